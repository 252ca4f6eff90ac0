package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/infrastructure/memory"
	"github.com/biteguide-api/internal/pkg/otpcode"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const window = 5 * time.Minute

func sequence(codes ...string) otpcode.Generator {
	i := 0
	return otpcode.GeneratorFunc(func() string {
		c := codes[i%len(codes)]
		i++
		return c
	})
}

func newTestService(gen otpcode.Generator) (Service, *memory.OTPRepo, *clockwork.FakeClock) {
	store := memory.NewOTPRepo()
	clock := clockwork.NewFakeClockAt(time.UnixMilli(0))
	return NewService(ServiceDeps{Store: store, Generator: gen, Clock: clock}), store, clock
}

func TestIssue_PersistsCodeAndTimestamp(t *testing.T) {
	svc, store, clock := newTestService(otpcode.Fixed("123456"))
	clock.Advance(42 * time.Millisecond)

	code, err := svc.Issue(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	rec, err := store.Get(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", rec.Code)
	assert.Equal(t, int64(42), rec.Timestamp)
}

func TestIssue_SecondIssueReplacesFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(sequence("111111", "222222"))

	first, err := svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	res, err := svc.Verify(ctx, "a@b.com", first)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonMismatch, res.Reason)

	res, err = svc.Verify(ctx, "a@b.com", second)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestVerify_SingleConsumption(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(otpcode.Fixed("123456"))
	_, err := svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	res, err := svc.Verify(ctx, "a@b.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, Result{Accepted: true, Reason: ReasonAccepted}, res)

	_, err = store.Get(ctx, "a@b.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	res, err = svc.Verify(ctx, "a@b.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, ReasonExpiredOrMissing, res.Reason)
}

func TestVerify_MismatchRetainsRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(otpcode.Fixed("123456"))
	_, err := svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	res, err := svc.Verify(ctx, "a@b.com", "654321")
	require.NoError(t, err)
	assert.Equal(t, ReasonMismatch, res.Reason)
	assert.True(t, errors.Is(res.Err(), domain.ErrOTPMismatch))

	res, err = svc.Verify(ctx, "a@b.com", "123456")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.NoError(t, res.Err())
}

func TestSweep_DeletesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(otpcode.Fixed("123456"))
	now := time.UnixMilli(10 * 60 * 1000)

	require.NoError(t, store.Put(ctx, &domain.OTPRecord{Identifier: "old@b.com", Code: "1", Timestamp: now.UnixMilli() - window.Milliseconds() - 1}))
	require.NoError(t, store.Put(ctx, &domain.OTPRecord{Identifier: "edge@b.com", Code: "2", Timestamp: now.UnixMilli() - window.Milliseconds()}))
	require.NoError(t, store.Put(ctx, &domain.OTPRecord{Identifier: "new@b.com", Code: "3", Timestamp: now.UnixMilli()}))

	n, err := svc.Sweep(ctx, now, window)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Get(ctx, "old@b.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = store.Get(ctx, "edge@b.com")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "new@b.com")
	assert.NoError(t, err)
}

func TestSweep_ThenVerifyIsExpiredOrMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(otpcode.Fixed("123456"))
	_, err := svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	n, err := svc.Sweep(ctx, time.UnixMilli(301000), 300000*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := svc.Verify(ctx, "a@b.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, ReasonExpiredOrMissing, res.Reason)
	assert.True(t, errors.Is(res.Err(), domain.ErrOTPMissingOrExpired))
}

// --- failure paths ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, rec *domain.OTPRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *mockStore) Get(ctx context.Context, identifier string) (*domain.OTPRecord, error) {
	args := m.Called(ctx, identifier)
	if r, _ := args.Get(0).(*domain.OTPRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}
func (m *mockStore) ListIssuedBefore(ctx context.Context, cutoff int64) ([]domain.OTPRecord, error) {
	args := m.Called(ctx, cutoff)
	recs, _ := args.Get(0).([]domain.OTPRecord)
	return recs, args.Error(1)
}
func (m *mockStore) DeleteIssuedBefore(ctx context.Context, identifier string, cutoff int64) (bool, error) {
	args := m.Called(ctx, identifier, cutoff)
	return args.Bool(0), args.Error(1)
}

func TestPending(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(otpcode.Fixed("123456"))

	ok, err := svc.Pending(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	ok, err = svc.Pending(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Verify(ctx, "a@b.com", "123456")
	require.NoError(t, err)
	ok, err = svc.Pending(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPending_StoreError(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, "a@b.com").Return(nil, errors.New("timeout"))
	svc := NewService(ServiceDeps{Store: store})

	_, err := svc.Pending(context.Background(), "a@b.com")
	assert.ErrorContains(t, err, "timeout")
}

func TestVerify_StoreErrorIsNotARejection(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, "a@b.com").Return(nil, errors.New("timeout"))
	svc := NewService(ServiceDeps{Store: store})

	_, err := svc.Verify(context.Background(), "a@b.com", "123456")
	assert.ErrorContains(t, err, "timeout")
}

func TestSweep_ContinuesPastFailedDelete(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	cutoff := now.UnixMilli() - window.Milliseconds()
	store := new(mockStore)
	store.On("ListIssuedBefore", mock.Anything, cutoff).Return([]domain.OTPRecord{
		{Identifier: "x@b.com", Timestamp: 0},
		{Identifier: "y@b.com", Timestamp: 0},
	}, nil)
	store.On("DeleteIssuedBefore", mock.Anything, "x@b.com", cutoff).Return(false, errors.New("throttled"))
	store.On("DeleteIssuedBefore", mock.Anything, "y@b.com", cutoff).Return(true, nil)
	svc := NewService(ServiceDeps{Store: store})

	n, err := svc.Sweep(context.Background(), now, window)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	store.AssertExpectations(t)
}

func TestSweep_SkipsRecordReissuedAfterListing(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	cutoff := now.UnixMilli() - window.Milliseconds()
	store := new(mockStore)
	store.On("ListIssuedBefore", mock.Anything, cutoff).Return([]domain.OTPRecord{
		{Identifier: "x@b.com", Timestamp: 0},
	}, nil)
	store.On("DeleteIssuedBefore", mock.Anything, "x@b.com", cutoff).Return(false, nil)
	svc := NewService(ServiceDeps{Store: store})

	n, err := svc.Sweep(context.Background(), now, window)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// reissuingStore issues a new code for the listed identifiers right after the
// stale listing is taken, the way a concurrent Start request would.
type reissuingStore struct {
	*memory.OTPRepo
	reissue func(identifier string)
}

func (s *reissuingStore) ListIssuedBefore(ctx context.Context, cutoff int64) ([]domain.OTPRecord, error) {
	recs, err := s.OTPRepo.ListIssuedBefore(ctx, cutoff)
	for _, r := range recs {
		s.reissue(r.Identifier)
	}
	return recs, err
}

func TestSweep_CodeReissuedDuringSweepStillVerifies(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.UnixMilli(0))
	store := &reissuingStore{OTPRepo: memory.NewOTPRepo()}
	svc := NewService(ServiceDeps{Store: store, Generator: sequence("111111", "222222"), Clock: clock})

	_, err := svc.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	clock.Advance(window + time.Second)

	var fresh string
	store.reissue = func(identifier string) {
		fresh, err = svc.Issue(ctx, identifier)
		require.NoError(t, err)
	}

	n, err := svc.Sweep(ctx, clock.Now(), window)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.Equal(t, "222222", fresh)

	res, err := svc.Verify(ctx, "a@b.com", fresh)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}
