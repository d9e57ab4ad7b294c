package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/repository"
	"github.com/taleemhub/school-admin-api/pkg/config"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type authProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
}

type sessionStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration, singleSession bool) error
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	RevokeUser(ctx context.Context, userID string) error
}

// AuthService issues JWT access tokens and Redis-backed refresh sessions.
// Every protected request is validated server-side; no trust is placed in
// client-held state beyond the signed token itself.
type AuthService struct {
	profiles  authProfileRepository
	sessions  sessionStore
	cfg       config.SessionConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(profiles authProfileRepository, sessions sessionStore, cfg config.SessionConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		profiles:  profiles,
		sessions:  sessions,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureOperator provisions the dashboard operator account at startup: when no
// profile owns the configured email, an admin profile with a bcrypt-hashed
// password is created. An existing profile under that email is left untouched,
// so a redeploy never resets the operator's password.
func (s *AuthService) EnsureOperator(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return appErrors.Clone(appErrors.ErrValidation, "operator email and password are required")
	}

	existing, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check operator profile")
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			s.logger.Warn("configured operator email belongs to a non-admin profile",
				zap.String("email", email))
		}
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash operator password")
	}
	operator := &models.Profile{
		Name:         name,
		Email:        email,
		Role:         models.RoleAdmin,
		PasswordHash: string(passwordHash),
	}
	if err := s.profiles.Create(ctx, operator); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create operator profile")
	}
	s.logger.Info("operator profile provisioned", zap.String("email", email))
	return nil
}

// Login verifies credentials and issues a token pair. Only admin profiles may
// open dashboard sessions.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	profile, err := s.profiles.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}
	if profile == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if profile.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "dashboard access requires an admin profile")
	}

	return s.issuePair(ctx, profile)
}

// Refresh exchanges a valid refresh token for a new pair. The old token is
// revoked so each refresh token is single-use.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	userID, err := s.sessions.Lookup(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is invalid or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to look up session")
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.sessions.Revoke(ctx, req.RefreshToken)
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session owner no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load profile")
	}

	if err := s.sessions.Revoke(ctx, req.RefreshToken); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to rotate session")
	}
	return s.issuePair(ctx, profile)
}

// Logout revokes the refresh token. Missing tokens are treated as already
// logged out.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to revoke session")
	}
	return nil
}

// ValidateAccessToken parses and verifies a bearer token, returning its claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "access token is invalid or expired")
	}
	return claims, nil
}

func (s *AuthService) issuePair(ctx context.Context, profile *models.Profile) (*models.LoginResponse, error) {
	issuedAt := s.now().UTC()

	accessToken, err := s.generateAccessToken(profile, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate refresh token")
	}
	if err := s.sessions.Save(ctx, refreshToken, profile.ID, s.cfg.RefreshExpiry, s.cfg.SingleSession); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save session")
	}

	s.logger.Info("session issued",
		zap.String("user_id", profile.ID),
		zap.String("email", profile.Email),
	)

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessExpiry.Seconds()),
		IssuedAt:     issuedAt,
		User:         profile.Public(),
	}, nil
}

func (s *AuthService) generateAccessToken(profile *models.Profile, issuedAt time.Time) (string, error) {
	claims := models.SessionClaims{
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.cfg.AccessExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
