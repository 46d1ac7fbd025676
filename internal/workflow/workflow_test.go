package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"domain-hunter/internal/database"
	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	profile *models.Profile
	err     error
	block   chan struct{}
	calls   int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ models.Metrics) (*models.Profile, error) {
	f.mu.Lock()
	f.calls++
	profile, err, block := f.profile, f.err, f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return profile, err
}

func (f *fakeGenerator) set(profile *models.Profile, err error) {
	f.mu.Lock()
	f.profile, f.err = profile, err
	f.mu.Unlock()
}

func newTestService(t *testing.T, gen ProfileGenerator) *Service {
	return NewService(database.OpenTest(t), gen, nil, logger.NewNopLogger(), time.Second)
}

func record(name string) models.DomainRecord {
	return models.DomainRecord{
		Name:   name,
		TLD:    "com",
		Source: models.SourceVendorCSV,
		Score:  models.Score{Overall: 85, Tier: models.TierGold, Recommendation: models.RecStrongBuy},
	}
}

func TestCandidatePromoteQueue(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	require.NoError(t, svc.AddCandidate(record("example.com")))
	require.NoError(t, svc.Promote("example.com"))

	queued, err := svc.Queued()
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, models.StageQueued, queued[0].Stage)

	candidates, err := svc.Candidates()
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAddCandidateDuplicateIsNoop(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	require.NoError(t, svc.AddCandidate(record("example.com")))
	require.NoError(t, svc.AddCandidate(record("example.com")))

	candidates, err := svc.Candidates()
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestQuickQueueSkipsCandidate(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	require.NoError(t, svc.QuickQueue(record("fast.com")))

	stage, ok := svc.Stage("fast.com")
	require.True(t, ok)
	assert.Equal(t, models.StageQueued, stage)
}

func TestPromoteRequiresCandidate(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	require.NoError(t, svc.QuickQueue(record("example.com")))

	err := svc.Promote("example.com")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDiscard(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	require.NoError(t, svc.AddCandidate(record("example.com")))
	require.NoError(t, svc.Discard("example.com"))

	_, ok := svc.Stage("example.com")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Discard("example.com"), ErrNotFound)
}

func TestMarkPurchasedRequiresQueued(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	require.NoError(t, svc.AddCandidate(record("example.com")))

	_, err := svc.MarkPurchased("example.com")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.MarkPurchased("never-seen.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPurchasedStartsGeneration(t *testing.T) {
	gen := &fakeGenerator{profile: &models.Profile{Niche: "gardening", Keywords: []string{"seeds"}}}
	svc := newTestService(t, gen)

	require.NoError(t, svc.QuickQueue(record("example.com")))

	owned, err := svc.MarkPurchased("example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ProfileGenerating, owned.ProfileStatus)

	queued, err := svc.Queued()
	require.NoError(t, err)
	assert.Empty(t, queued)

	svc.Wait()

	after, err := svc.GetOwned("example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ProfileSuccess, after.ProfileStatus)
	require.NotNil(t, after.Profile())
	assert.Equal(t, "gardening", after.Profile().Niche)
}

func TestGenerationFailureIsRecoverableState(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider quota exceeded")}
	svc := newTestService(t, gen)

	require.NoError(t, svc.QuickQueue(record("example.com")))
	_, err := svc.MarkPurchased("example.com")
	require.NoError(t, err)
	svc.Wait()

	owned, err := svc.GetOwned("example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ProfileFailed, owned.ProfileStatus)
	assert.Equal(t, "provider quota exceeded", owned.ProfileError)

	// The failure never removes the owned record.
	list, err := svc.Owned()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRetryAfterFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("transient")}
	svc := newTestService(t, gen)

	require.NoError(t, svc.QuickQueue(record("example.com")))
	_, err := svc.MarkPurchased("example.com")
	require.NoError(t, err)
	svc.Wait()

	failed, err := svc.GetOwned("example.com")
	require.NoError(t, err)
	require.Equal(t, models.ProfileFailed, failed.ProfileStatus)

	gen.set(&models.Profile{Niche: "recipes"}, nil)
	require.NoError(t, svc.RetryProfile("example.com"))
	svc.Wait()

	owned, err := svc.Owned()
	require.NoError(t, err)
	require.Len(t, owned, 1, "retry must not duplicate the owned row")
	assert.Equal(t, models.ProfileSuccess, owned[0].ProfileStatus)
	assert.Empty(t, owned[0].ProfileError)
	assert.Equal(t, failed.PurchasedAt, owned[0].PurchasedAt)
}

func TestRetryRequiresFailedState(t *testing.T) {
	gen := &fakeGenerator{profile: &models.Profile{Niche: "travel"}}
	svc := newTestService(t, gen)

	require.NoError(t, svc.QuickQueue(record("example.com")))
	_, err := svc.MarkPurchased("example.com")
	require.NoError(t, err)
	svc.Wait()

	err = svc.RetryProfile("example.com")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ErrorIs(t, svc.RetryProfile("missing.com"), ErrNotFound)
}

func TestDuplicateGenerationRejected(t *testing.T) {
	block := make(chan struct{})
	gen := &fakeGenerator{profile: &models.Profile{Niche: "pets"}, block: block}
	svc := newTestService(t, gen)

	require.NoError(t, svc.QuickQueue(record("example.com")))
	_, err := svc.MarkPurchased("example.com")
	require.NoError(t, err)

	err = svc.startGeneration("example.com", models.Metrics{})
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	close(block)
	svc.Wait()

	gen.mu.Lock()
	defer gen.mu.Unlock()
	assert.Equal(t, 1, gen.calls)
}

func TestLateResultForRemovedDomainDropped(t *testing.T) {
	svc := newTestService(t, &fakeGenerator{})

	// No owned row exists; the late result is silently dropped.
	svc.applyOutcome("ghost.com", &models.Profile{Niche: "anything"}, nil)

	_, err := svc.GetOwned("ghost.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkSiteCreatedMonotonic(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("still failing")}
	svc := newTestService(t, gen)

	require.NoError(t, svc.QuickQueue(record("example.com")))
	_, err := svc.MarkPurchased("example.com")
	require.NoError(t, err)
	svc.Wait()

	// Site creation is independent of profile readiness.
	require.NoError(t, svc.MarkSiteCreated("example.com"))
	require.NoError(t, svc.MarkSiteCreated("example.com"))

	owned, err := svc.GetOwned("example.com")
	require.NoError(t, err)
	assert.True(t, owned.SiteCreated)
	assert.Equal(t, models.ProfileFailed, owned.ProfileStatus)

	assert.ErrorIs(t, svc.MarkSiteCreated("missing.com"), ErrNotFound)
}
