package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type fakeProfileRepo struct {
	profiles map[string]*models.Profile

	created       *models.Profile
	linked        *models.Profile
	linkedTo      string
	linkedCount   int
	deletedID     string
	deleteRefID   string
	deleteCount   int
	severedIDs    []string
	unlinkedID    string
	unlinkRefID   string
	unlinkCount   int
	deleteCascade bool
}

func newFakeProfileRepo(profiles ...*models.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: map[string]*models.Profile{}}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (f *fakeProfileRepo) FindByID(_ context.Context, id string) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeProfileRepo) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) FindByReferralCode(_ context.Context, code string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.ReferralCode == code {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) ListReferredBy(_ context.Context, code string) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range f.profiles {
		if p.ReferralByCode == code {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("p-%d", len(f.profiles)+1)
	}
	f.created = profile
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) CreateLinked(_ context.Context, profile *models.Profile, referrerID string, referrerCount int) error {
	f.linked = profile
	f.linkedTo = referrerID
	f.linkedCount = referrerCount
	return nil
}

func (f *fakeProfileRepo) DeleteCascade(_ context.Context, id, referrerID string, referrerCount int, severedIDs []string) error {
	f.deleteCascade = true
	f.deletedID = id
	f.deleteRefID = referrerID
	f.deleteCount = referrerCount
	f.severedIDs = severedIDs
	return nil
}

func (f *fakeProfileRepo) Unlink(_ context.Context, referredID, referrerID string, referrerCount int) error {
	f.unlinkedID = referredID
	f.unlinkRefID = referrerID
	f.unlinkCount = referrerCount
	return nil
}

func TestRegisterWithoutReferralCode(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewReferralService(repo, nil, zap.NewNop())

	profile := &models.Profile{Name: "Amina", Email: "amina@example.com", ReferralCode: "AMN-1"}
	require.NoError(t, svc.Register(context.Background(), profile))

	require.NotNil(t, repo.created)
	assert.Empty(t, repo.created.ReferrerID)
	assert.Nil(t, repo.linked)
}

func TestRegisterLinksAndIncrementsCount(t *testing.T) {
	referrer := &models.Profile{ID: "ref-1", Email: "r@example.com", ReferralCode: "REF-1", ReferralCount: 2}
	repo := newFakeProfileRepo(referrer)
	svc := NewReferralService(repo, nil, zap.NewNop())

	profile := &models.Profile{Name: "Bilal", Email: "b@example.com", ReferralCode: "BIL-1", ReferralByCode: "REF-1"}
	require.NoError(t, svc.Register(context.Background(), profile))

	require.NotNil(t, repo.linked)
	assert.Equal(t, "ref-1", repo.linked.ReferrerID)
	assert.Equal(t, "ref-1", repo.linkedTo)
	assert.Equal(t, 3, repo.linkedCount)
	assert.Nil(t, repo.created)
}

func TestRegisterUnknownReferralCodeRejectedBeforeWrite(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewReferralService(repo, nil, zap.NewNop())

	profile := &models.Profile{Email: "c@example.com", ReferralCode: "C-1", ReferralByCode: "NOPE"}
	err := svc.Register(context.Background(), profile)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErr.Code)
	assert.Nil(t, repo.created)
	assert.Nil(t, repo.linked)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := &models.Profile{ID: "u-1", Email: "dup@example.com", ReferralCode: "U-1"}
	repo := newFakeProfileRepo(existing)
	svc := NewReferralService(repo, nil, zap.NewNop())

	err := svc.Register(context.Background(), &models.Profile{Email: "dup@example.com", ReferralCode: "X-1"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestRegisterDuplicateReferralCode(t *testing.T) {
	existing := &models.Profile{ID: "u-1", Email: "a@example.com", ReferralCode: "TAKEN"}
	repo := newFakeProfileRepo(existing)
	svc := NewReferralService(repo, nil, zap.NewNop())

	err := svc.Register(context.Background(), &models.Profile{Email: "b@example.com", ReferralCode: "TAKEN"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateReferralCode.Code, appErrors.FromError(err).Code)
}

func TestRemoveUserCascadesAndDecrements(t *testing.T) {
	referrer := &models.Profile{ID: "ref-1", ReferralCode: "REF-1", ReferralCount: 3}
	victim := &models.Profile{ID: "u-1", ReferralCode: "U-1", ReferralByCode: "REF-1", ReferrerID: "ref-1"}
	childA := &models.Profile{ID: "c-1", ReferralByCode: "U-1", ReferrerID: "u-1"}
	childB := &models.Profile{ID: "c-2", ReferralByCode: "U-1", ReferrerID: "u-1"}
	repo := newFakeProfileRepo(referrer, victim, childA, childB)
	svc := NewReferralService(repo, nil, zap.NewNop())

	require.NoError(t, svc.RemoveUser(context.Background(), "u-1"))

	assert.True(t, repo.deleteCascade)
	assert.Equal(t, "u-1", repo.deletedID)
	assert.Equal(t, "ref-1", repo.deleteRefID)
	assert.Equal(t, 2, repo.deleteCount)
	assert.ElementsMatch(t, []string{"c-1", "c-2"}, repo.severedIDs)
}

func TestRemoveUserDanglingReferrerSkipsDecrement(t *testing.T) {
	victim := &models.Profile{ID: "u-1", ReferralCode: "U-1", ReferrerID: "ghost"}
	repo := newFakeProfileRepo(victim)
	svc := NewReferralService(repo, nil, zap.NewNop())

	require.NoError(t, svc.RemoveUser(context.Background(), "u-1"))

	assert.Equal(t, "u-1", repo.deletedID)
	assert.Empty(t, repo.deleteRefID)
}

func TestRemoveUserCountNeverNegative(t *testing.T) {
	referrer := &models.Profile{ID: "ref-1", ReferralCode: "REF-1", ReferralCount: 0}
	victim := &models.Profile{ID: "u-1", ReferralCode: "U-1", ReferrerID: "ref-1"}
	repo := newFakeProfileRepo(referrer, victim)
	svc := NewReferralService(repo, nil, zap.NewNop())

	require.NoError(t, svc.RemoveUser(context.Background(), "u-1"))
	assert.Equal(t, 0, repo.deleteCount)
}

func TestUnlinkRequiresReferrer(t *testing.T) {
	orphan := &models.Profile{ID: "u-1"}
	repo := newFakeProfileRepo(orphan)
	svc := NewReferralService(repo, nil, zap.NewNop())

	err := svc.Unlink(context.Background(), "u-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUnlinkDecrementsReferrer(t *testing.T) {
	referrer := &models.Profile{ID: "ref-1", ReferralCount: 5}
	referred := &models.Profile{ID: "u-1", ReferrerID: "ref-1"}
	repo := newFakeProfileRepo(referrer, referred)
	svc := NewReferralService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Unlink(context.Background(), "u-1"))

	assert.Equal(t, "u-1", repo.unlinkedID)
	assert.Equal(t, "ref-1", repo.unlinkRefID)
	assert.Equal(t, 4, repo.unlinkCount)
}

type fakeReferralMetrics struct {
	kinds []string
}

func (f *fakeReferralMetrics) RecordReferralMutation(kind string) {
	f.kinds = append(f.kinds, kind)
}

func TestReferralMutationsAreCounted(t *testing.T) {
	referrer := &models.Profile{ID: "ref-1", Email: "r@example.com", ReferralCode: "REF-1", ReferralCount: 1}
	referred := &models.Profile{ID: "u-1", ReferralCode: "U-1", ReferralByCode: "REF-1", ReferrerID: "ref-1"}
	repo := newFakeProfileRepo(referrer, referred)
	metrics := &fakeReferralMetrics{}
	svc := NewReferralService(repo, metrics, zap.NewNop())

	linked := &models.Profile{Email: "n@example.com", ReferralCode: "N-1", ReferralByCode: "REF-1"}
	require.NoError(t, svc.Register(context.Background(), linked))
	require.NoError(t, svc.Unlink(context.Background(), "u-1"))
	require.NoError(t, svc.RemoveUser(context.Background(), "u-1"))

	assert.Equal(t, []string{"link", "unlink", "cascade"}, metrics.kinds)
}

func TestRemoveUnlinkedUserRecordsNoMutation(t *testing.T) {
	loner := &models.Profile{ID: "u-1", Email: "l@example.com"}
	repo := newFakeProfileRepo(loner)
	metrics := &fakeReferralMetrics{}
	svc := NewReferralService(repo, metrics, zap.NewNop())

	require.NoError(t, svc.RemoveUser(context.Background(), "u-1"))
	assert.Empty(t, metrics.kinds)
}
