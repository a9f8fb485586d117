package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

const avatarSize = 256

// avatarPalette mirrors the portal's initials bubbles.
var avatarPalette = [][3]float64{
	{0.18, 0.49, 0.20}, // green
	{0.96, 0.49, 0.00}, // orange
	{0.12, 0.53, 0.90}, // blue
	{0.48, 0.12, 0.64}, // purple
	{0.76, 0.09, 0.36}, // raspberry
}

// AvatarService renders initials avatars and pushes them into the bucket.
// It is optional at boot: a missing font file disables generation without
// failing startup.
type AvatarService interface {
	Enabled() bool
	Generate(ctx context.Context, userID string, fullName string) (key string, url string, err error)
}

type avatarService struct {
	log    *logger.Logger
	bucket BucketService
	face   font.Face
}

func NewAvatarService(log *logger.Logger, bucket BucketService, fontPath string) AvatarService {
	log = log.With("service", "AvatarService")
	service := &avatarService{log: log, bucket: bucket}
	if fontPath == "" {
		log.Warn("Avatar font path not set, avatar generation disabled")
		return service
	}
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		log.Warn("Failed to read avatar font, avatar generation disabled", "path", fontPath, "error", err)
		return service
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		log.Warn("Failed to parse avatar font, avatar generation disabled", "path", fontPath, "error", err)
		return service
	}
	service.face = truetype.NewFace(parsed, &truetype.Options{Size: avatarSize * 0.42})
	return service
}

func (as *avatarService) Enabled() bool {
	return as.face != nil && as.bucket != nil
}

func (as *avatarService) Generate(ctx context.Context, userID string, fullName string) (string, string, error) {
	if !as.Enabled() {
		return "", "", fmt.Errorf("avatar generation is disabled")
	}
	initials := Initials(fullName)
	if initials == "" {
		initials = "?"
	}

	dc := gg.NewContext(avatarSize, avatarSize)
	color := avatarPalette[colorIndex(userID)]
	dc.SetRGB(color[0], color[1], color[2])
	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Fill()

	dc.SetFontFace(as.face)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(initials, avatarSize/2, avatarSize/2, 0.5, 0.42)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", "", fmt.Errorf("Failed to encode avatar: %w", err)
	}

	key := fmt.Sprintf("avatars/%s.png", userID)
	url, err := as.bucket.Upload(ctx, key, "image/png", buf.Bytes())
	if err != nil {
		return "", "", fmt.Errorf("Failed to upload avatar: %w", err)
	}
	return key, url, nil
}

// Initials extracts up to two uppercase initials from a full name.
func Initials(fullName string) string {
	fields := strings.Fields(strings.TrimSpace(fullName))
	if len(fields) == 0 {
		return ""
	}
	first := []rune(fields[0])
	initials := strings.ToUpper(string(first[0]))
	if len(fields) > 1 {
		last := []rune(fields[len(fields)-1])
		initials += strings.ToUpper(string(last[0]))
	}
	return initials
}

func colorIndex(seed string) int {
	hasher := fnv.New32a()
	hasher.Write([]byte(seed))
	return int(hasher.Sum32() % uint32(len(avatarPalette)))
}
