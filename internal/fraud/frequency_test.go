package fraud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHistoryStore struct {
	mock.Mock
}

func (m *mockHistoryStore) CountClaims(ctx context.Context, policyNumber string, since time.Time) (int, error) {
	args := m.Called(ctx, policyNumber, since)
	return args.Int(0), args.Error(1)
}

func TestEvaluateFrequency(t *testing.T) {
	tests := []struct {
		count      int
		wantScore  int
		suspicious bool
	}{
		{count: 0, wantScore: 0},
		{count: 1, wantScore: 0},
		{count: 2, wantScore: 0},
		{count: 3, wantScore: 24, suspicious: true},
		{count: 4, wantScore: 25, suspicious: true},
		{count: 12, wantScore: 25, suspicious: true},
	}

	for _, tt := range tests {
		result := EvaluateFrequency(tt.count)
		assert.Equal(t, tt.wantScore, result.Score, "count %d", tt.count)
		assert.Equal(t, tt.suspicious, result.IsSuspicious, "count %d", tt.count)
		assert.Equal(t, tt.count, result.RecentClaims)
		if tt.suspicious {
			assert.Len(t, result.Flags, 1)
			assert.Contains(t, result.Flags[0], "claims in last 90 days")
		} else {
			assert.Empty(t, result.Flags)
		}
	}
}

func TestFrequencyAnalyzer_QueriesTrailingWindow(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := new(mockHistoryStore)
	store.On("CountClaims", mock.Anything, "POL-7", asOf.AddDate(0, 0, -90)).Return(3, nil)

	result := NewFrequencyAnalyzer(store, time.Second).Analyze(context.Background(), "POL-7", asOf)

	assert.Equal(t, 24, result.Score)
	assert.True(t, result.IsSuspicious)
	assert.Equal(t, []string{"3 claims in last 90 days"}, result.Flags)
	assert.False(t, result.Degraded)
	store.AssertExpectations(t)
}

func TestFrequencyAnalyzer_StoreErrorDegrades(t *testing.T) {
	store := new(mockHistoryStore)
	store.On("CountClaims", mock.Anything, "POL-7", mock.Anything).Return(0, errors.New("connection refused"))

	result := NewFrequencyAnalyzer(store, time.Second).Analyze(context.Background(), "POL-7", time.Now())

	assert.True(t, result.Degraded)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.IsSuspicious)
	assert.Empty(t, result.Flags)
	assert.Contains(t, result.FailureReason, "connection refused")
}

func TestFrequencyAnalyzer_TimeoutDegrades(t *testing.T) {
	store := new(mockHistoryStore)
	store.On("CountClaims", mock.Anything, "POL-7", mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return(0, context.DeadlineExceeded)

	result := NewFrequencyAnalyzer(store, 20*time.Millisecond).Analyze(context.Background(), "POL-7", time.Now())

	assert.True(t, result.Degraded)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "claim history query timed out", result.FailureReason)
}
