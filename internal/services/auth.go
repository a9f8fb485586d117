package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/repos"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
	"github.com/agrosub/agrosub-backend/internal/sse"
	"github.com/agrosub/agrosub-backend/internal/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email is already registered")
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*types.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	Authenticate(ctx context.Context, tokenString string) (*requestdata.RequestData, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	adminRepo     repos.AdminRepo
	avatar        AvatarService
	hub           *sse.Hub
	jwtSecret     []byte
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	adminRepo repos.AdminRepo,
	avatar AvatarService,
	hub *sse.Hub,
	jwtSecret string,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		adminRepo:     adminRepo,
		avatar:        avatar,
		hub:           hub,
		jwtSecret:     []byte(jwtSecret),
	}
}

func (as *authService) Register(ctx context.Context, email, password, firstName, lastName string) (*types.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("email and password are required")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to check email: %w", err)
	}
	if exists {
		return nil, nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to hash password: %w", err)
	}

	user := &types.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	created, err := as.userRepo.Create(ctx, nil, []*types.User{user})
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to create user: %w", err)
	}
	user = created[0]

	if as.avatar != nil && as.avatar.Enabled() {
		fullName := strings.TrimSpace(user.FirstName + " " + user.LastName)
		key, url, err := as.avatar.Generate(ctx, user.ID.String(), fullName)
		if err != nil {
			as.log.Warn("Failed to generate avatar", "userID", user.ID, "error", err)
		} else if err := as.userRepo.UpdateAvatar(ctx, nil, user.ID, key, url); err != nil {
			as.log.Warn("Failed to store avatar reference", "userID", user.ID, "error", err)
		} else {
			user.AvatarBucketKey = key
			user.AvatarURL = url
		}
	}

	pair, err := as.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	as.hub.Publish(user.ID, sse.SessionMessage{Event: sse.SessionEventSignedIn})
	return user, pair, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil, ErrInvalidCredentials
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := as.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	isAdmin, err := as.adminRepo.Exists(ctx, nil, user.ID)
	if err != nil {
		as.log.Warn("Failed to check admin membership on login", "userID", user.ID, "error", err)
	} else if isAdmin {
		if err := as.adminRepo.TouchLastLogin(ctx, nil, user.ID); err != nil {
			as.log.Warn("Failed to update admin last login", "userID", user.ID, "error", err)
		}
	}

	as.hub.Publish(user.ID, sse.SessionMessage{Event: sse.SessionEventSignedIn})
	return user, pair, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	tokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, nil, []string{refreshToken})
	if err != nil {
		return nil, fmt.Errorf("Failed to load refresh token: %w", err)
	}
	if len(tokens) == 0 {
		return nil, ErrInvalidToken
	}
	stored := tokens[0]
	if time.Now().After(stored.ExpiresAt) {
		if err := as.userTokenRepo.FullDeleteByTokens(ctx, nil, []*types.UserToken{stored}); err != nil {
			as.log.Warn("Failed to delete expired refresh token", "error", err)
		}
		return nil, ErrInvalidToken
	}

	// Rotation: the old pair is revoked before the new one is issued.
	if err := as.userTokenRepo.FullDeleteByTokens(ctx, nil, []*types.UserToken{stored}); err != nil {
		return nil, fmt.Errorf("Failed to rotate refresh token: %w", err)
	}
	return as.issueTokens(ctx, stored.UserID)
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return ErrInvalidToken
	}
	tokens, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{rd.TokenString})
	if err != nil {
		return fmt.Errorf("Failed to load session tokens: %w", err)
	}
	if len(tokens) > 0 {
		if err := as.userTokenRepo.FullDeleteByTokens(ctx, nil, tokens); err != nil {
			return fmt.Errorf("Failed to delete session tokens: %w", err)
		}
	}
	as.hub.Publish(rd.UserID, sse.SessionMessage{Event: sse.SessionEventSignedOut})
	return nil
}

// Authenticate validates a bearer token and resolves the caller's identity
// and elevation in one pass, so a request is classified exactly once.
func (as *authService) Authenticate(ctx context.Context, tokenString string) (*requestdata.RequestData, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// The token must still be a live session row: logout revokes it even
	// before the JWT expiry.
	stored, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return nil, fmt.Errorf("Failed to load session token: %w", err)
	}
	if len(stored) == 0 {
		return nil, ErrInvalidToken
	}

	isAdmin, err := as.adminRepo.Exists(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to check admin membership: %w", err)
	}

	return &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: stored[0].RefreshToken,
		UserID:       userID,
		IsAdmin:      isAdmin,
	}, nil
}

func (as *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(accessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("Failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("Failed to generate refresh token: %w", err)
	}
	refreshToken := hex.EncodeToString(refreshBytes)

	_, err = as.userTokenRepo.Create(ctx, nil, []*types.UserToken{{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(refreshTokenTTL),
	}})
	if err != nil {
		return nil, fmt.Errorf("Failed to persist session tokens: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
