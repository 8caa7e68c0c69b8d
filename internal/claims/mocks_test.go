package claims

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/claimguard/internal/damage"
	"github.com/richxcame/claimguard/internal/fraud"
	"github.com/richxcame/claimguard/pkg/models"
	"github.com/stretchr/testify/mock"
)

// ========================================
// MOCK IMPLEMENTATIONS
// ========================================

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetClaim(ctx context.Context, claimID uuid.UUID) (*models.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *mockRepository) GetPolicyContext(ctx context.Context, customerID uuid.UUID) (*models.PolicyContext, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PolicyContext), args.Error(1)
}

func (m *mockRepository) SaveOutcome(ctx context.Context, claimID uuid.UUID, outcome *models.ClaimOutcome) error {
	args := m.Called(ctx, claimID, outcome)
	return args.Error(0)
}

func (m *mockRepository) MarkUnderReview(ctx context.Context, claimID uuid.UUID, reason string, decidedAt time.Time) error {
	args := m.Called(ctx, claimID, reason, decidedAt)
	return args.Error(0)
}

type fakeImages struct {
	data []byte
	err  error
}

func (f *fakeImages) FetchURL(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

type fakeAssessor struct {
	result damage.Assessment
	panics bool
}

func (f *fakeAssessor) Assess(context.Context, []byte, models.ClaimType) damage.Assessment {
	if f.panics {
		panic("vision sdk exploded")
	}
	return f.result
}

type fakeScorer struct {
	mu     sync.Mutex
	result fraud.Score
	input  fraud.Input
}

func (f *fakeScorer) Score(_ context.Context, in fraud.Input) fraud.Score {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = in
	return f.result
}

type fakeProcessor struct {
	mu    sync.Mutex
	calls []uuid.UUID
	delay time.Duration
	err   error
	done  chan struct{}
}

func (f *fakeProcessor) ProcessClaim(ctx context.Context, claimID uuid.UUID) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, claimID)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func (f *fakeProcessor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeGuard struct {
	mu   sync.Mutex
	seen map[uuid.UUID]bool
	err  error
}

func (f *fakeGuard) Acquire(_ context.Context, claimID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[uuid.UUID]bool{}
	}
	if f.seen[claimID] {
		return false, nil
	}
	f.seen[claimID] = true
	return true, nil
}

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []uuid.UUID
	err       error
}

func (f *fakeSubmitter) Submit(_ context.Context, claimID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, claimID)
	return nil
}
