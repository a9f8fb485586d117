package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

// OpenAIClient is the server-side completion/transcription boundary. The
// bearer credential lives here and only here; it is never returned to a
// browser client.
type OpenAIClient interface {
	// Configured reports whether an API credential is present. Callers that
	// have a deterministic fallback should short-circuit to it when false.
	Configured() bool
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error)
	TranscribeAudio(ctx context.Context, audio []byte, filename string, language string) (string, error)
}

type ChatCompletionRequest struct {
	Model       string
	Temperature float64
	Messages    []types.ChatMessage
}

type openAIClient struct {
	log             *logger.Logger
	baseURL         string
	apiKey          string
	transcribeModel string
	httpClient      *http.Client

	maxRetries int
}

func NewOpenAIClient(log *logger.Logger, apiKey, baseURL, transcribeModel string, timeoutSeconds, maxRetries int) OpenAIClient {
	clientLog := log.With("service", "OpenAIClient")
	if apiKey == "" {
		clientLog.Warn("OPENAI_API_KEY is not set; completion calls will be skipped and deterministic fallbacks used")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if transcribeModel == "" {
		transcribeModel = "whisper-1"
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &openAIClient{
		log:             clientLog,
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		transcribeModel: transcribeModel,
		httpClient:      &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		maxRetries:      maxRetries,
	}
}

func (c *openAIClient) Configured() bool {
	return c.apiKey != ""
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *openAIHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

// jitterSleep spreads a backoff delay by +/- 20%.
func jitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

func (c *openAIClient) doOnce(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *openAIClient) doJSON(ctx context.Context, path string, body any, out any) error {
	if !c.Configured() {
		return fmt.Errorf("openai client is not configured")
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, http.MethodPost, path, "application/json", bytes.NewReader(encoded))
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}
		if !isRetryableErr(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
			if ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

type chatCompletionsRequest struct {
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature,omitempty"`
	Messages    []types.ChatMessage `json:"messages"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("chat completion requires at least one message")
	}
	body := chatCompletionsRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages:    req.Messages,
	}
	var resp chatCompletionsResponse
	if err := c.doJSON(ctx, "/v1/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai returned an empty message")
	}
	return content, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *openAIClient) TranscribeAudio(ctx context.Context, audio []byte, filename string, language string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openai client is not configured")
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data provided")
	}
	if filename == "" {
		filename = "recording.webm"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", c.transcribeModel); err != nil {
		return "", err
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	_, raw, err := c.doOnce(ctx, http.MethodPost, "/v1/audio/transcriptions", writer.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	var resp transcriptionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("transcription decode error: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
