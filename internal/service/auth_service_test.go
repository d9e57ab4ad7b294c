package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/repository"
	"github.com/taleemhub/school-admin-api/pkg/config"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type fakeSessionStore struct {
	sessions map[string]string
	revoked  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]string{}}
}

func (f *fakeSessionStore) Save(_ context.Context, token, userID string, _ time.Duration, _ bool) error {
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessionStore) Lookup(_ context.Context, token string) (string, error) {
	userID, ok := f.sessions[token]
	if !ok {
		return "", repository.ErrSessionNotFound
	}
	return userID, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, token string) error {
	delete(f.sessions, token)
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeSessionStore) RevokeUser(_ context.Context, userID string) error {
	for token, owner := range f.sessions {
		if owner == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "school-admin-api",
	}
}

func adminProfile(t *testing.T) *models.Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Profile{
		ID:           "admin-1",
		Email:        "admin@example.com",
		Role:         models.RoleAdmin,
		PasswordHash: string(hash),
		ReferralCode: "ADM-1",
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	admin := adminProfile(t)
	sessions := newFakeSessionStore()
	svc := NewAuthService(newFakeProfileRepo(admin), sessions, testSessionConfig(), nil, zap.NewNop())

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "admin-1", sessions.sessions[result.RefreshToken])
	assert.Empty(t, result.User.PasswordHash)

	claims, err := svc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeProfileRepo(adminProfile(t)), newFakeSessionStore(), testSessionConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeProfileRepo(), newFakeSessionStore(), testSessionConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "irrelevant"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsMemberRole(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	member := &models.Profile{ID: "m-1", Email: "member@example.com", Role: models.RoleMember, PasswordHash: string(hash)}
	svc := NewAuthService(newFakeProfileRepo(member), newFakeSessionStore(), testSessionConfig(), nil, zap.NewNop())

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "member@example.com", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	admin := adminProfile(t)
	sessions := newFakeSessionStore()
	svc := NewAuthService(newFakeProfileRepo(admin), sessions, testSessionConfig(), nil, zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Contains(t, sessions.revoked, login.RefreshToken)

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	cfg := testSessionConfig()
	cfg.AccessExpiry = -time.Minute
	svc := NewAuthService(newFakeProfileRepo(adminProfile(t)), newFakeSessionStore(), cfg, nil, zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(login.AccessToken)
	require.Error(t, err)
}

func TestLogoutRevokesSession(t *testing.T) {
	admin := adminProfile(t)
	sessions := newFakeSessionStore()
	svc := NewAuthService(newFakeProfileRepo(admin), sessions, testSessionConfig(), nil, zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	_, err = sessions.Lookup(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}

func TestEnsureOperatorProvisionsLoginableAdmin(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewAuthService(repo, newFakeSessionStore(), testSessionConfig(), nil, zap.NewNop())

	require.NoError(t, svc.EnsureOperator(context.Background(), "Operator", "op@example.com", "open sesame"))

	require.NotNil(t, repo.created)
	assert.Equal(t, models.RoleAdmin, repo.created.Role)
	assert.NotEmpty(t, repo.created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("open sesame")))

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "op@example.com", Password: "open sesame"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
}

func TestEnsureOperatorLeavesExistingProfileAlone(t *testing.T) {
	admin := adminProfile(t)
	originalHash := admin.PasswordHash
	repo := newFakeProfileRepo(admin)
	svc := NewAuthService(repo, newFakeSessionStore(), testSessionConfig(), nil, zap.NewNop())

	require.NoError(t, svc.EnsureOperator(context.Background(), "Operator", "admin@example.com", "new password"))

	assert.Nil(t, repo.created)
	assert.Equal(t, originalHash, admin.PasswordHash)
}

func TestEnsureOperatorRequiresCredentials(t *testing.T) {
	svc := NewAuthService(newFakeProfileRepo(), newFakeSessionStore(), testSessionConfig(), nil, zap.NewNop())

	err := svc.EnsureOperator(context.Background(), "Operator", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
