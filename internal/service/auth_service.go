package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

var (
	// ErrEmailTaken indicates the registration email is already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates the login email/password pair is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalid indicates the bearer token has no active session.
	ErrSessionInvalid = errors.New("session invalid or expired")
)

// AuthService manages accounts and bearer-token sessions.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest, ip, userAgent string) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest, ip, userAgent string) (dto.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (models.User, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	validator  *validator.Validate
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	validate *validator.Validate,
	jwtSecret string,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:      userRepo,
		sessions:   sessionRepo,
		validator:  validate,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *authService) issueToken(ctx context.Context, user models.User, ip, userAgent string) (dto.AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	// jti keeps tokens issued within the same second distinct, so every
	// login gets its own session row.
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	session := models.Session{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest, ip, userAgent string) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		FullName:          strings.TrimSpace(payload.FullName),
		Email:             email,
		PasswordHash:      string(passwordHash),
		PreferredLanguage: string(tutor.NormalizeLanguage(payload.Language)),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("account registered")
	return s.issueToken(ctx, user, ip, userAgent)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest, ip, userAgent string) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("record last login")
	}

	return s.issueToken(ctx, user, ip, userAgent)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.RevokeByTokenHash(ctx, hashToken(token))
}

// Authenticate verifies the JWT signature and the backing session row, so a
// revoked token stops working before it expires.
func (s *authService) Authenticate(ctx context.Context, token string) (models.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return models.User{}, ErrSessionInvalid
	}

	session, err := s.sessions.FindActiveByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrSessionInvalid
		}
		return models.User{}, err
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrSessionInvalid
		}
		return models.User{}, err
	}

	return user, nil
}
