package claim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLookup struct {
	responses []*models.StatusRecord
	err       error
	clock     *fakeClock
	calls     int
	callTimes []time.Duration
}

func (s *scriptedLookup) ClaimStatus(_ context.Context, _ uint64) (*models.StatusRecord, error) {
	s.calls++
	if s.clock != nil {
		s.callTimes = append(s.callTimes, s.clock.elapsed)
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, nil
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

type fakeClock struct {
	elapsed time.Duration
	sleeps  int
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.elapsed += d
	c.sleeps++
	return nil
}

type progressLog struct {
	messages []string
}

func (p *progressLog) record(msg string, _ uint64) {
	p.messages = append(p.messages, msg)
}

func active(stage models.ClaimStage) *models.StatusRecord {
	return &models.StatusRecord{RequestID: 7, Status: models.ClaimActive{Stage: stage}}
}

func newTestPoller(clock *fakeClock, maxAttempts int) *Poller {
	p := NewPoller(DefaultInterval, maxAttempts)
	p.Sleep = clock.Sleep
	return p
}

func TestPoll_PendingThenCompleted(t *testing.T) {
	clock := &fakeClock{}
	details := models.ClaimDetails{Ledger: "ledger-1", AmountClaimed: 500, AmountWithdrawn: 490, TransferBlock: 12}
	lookup := &scriptedLookup{clock: clock, responses: []*models.StatusRecord{
		active(models.StagePending),
		{RequestID: 7, Status: models.ClaimCompleted{Details: details}},
	}}
	progress := &progressLog{}

	got, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, progress.record)

	require.NoError(t, err)
	assert.Equal(t, details, got)
	assert.Equal(t, []string{MessageQueued, MessageCompleted}, progress.messages)
	assert.Equal(t, 2, lookup.calls)
}

func TestPoll_StagesReportedInOrderOnce(t *testing.T) {
	clock := &fakeClock{}
	lookup := &scriptedLookup{clock: clock, responses: []*models.StatusRecord{
		active(models.StageProcessing),
		active(models.StageProcessing),
		active(models.StageBalanceRecorded),
		active(models.StageClaimAttempted),
		active(models.StageClaimVerified),
		active(models.StageWithdrawn),
		{Status: models.ClaimCompleted{}},
	}}
	progress := &progressLog{}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, progress.record)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"queued",
		"processing started",
		"recording balances",
		"claiming rewards",
		"verified, withdrawing",
		"withdrawing",
		"completed",
	}, progress.messages)
	assert.Equal(t, 7, lookup.calls)
}

func TestPoll_TimeoutAfterMaxAttempts(t *testing.T) {
	clock := &fakeClock{}
	responses := make([]*models.StatusRecord, 121)
	for i := range responses {
		responses[i] = active(models.StagePending)
	}
	lookup := &scriptedLookup{clock: clock, responses: responses}
	progress := &progressLog{}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, progress.record)

	assert.ErrorIs(t, err, ErrPollingTimeout)
	assert.Equal(t, 120, lookup.calls)
	assert.Equal(t, 10*time.Minute, clock.elapsed)
	assert.Equal(t, []string{MessageQueued}, progress.messages)
}

func TestPoll_FailedOnFirstPoll(t *testing.T) {
	clock := &fakeClock{}
	lookup := &scriptedLookup{clock: clock, responses: []*models.StatusRecord{
		{Status: models.ClaimFailed{Stage: models.StageFailed, Reason: "x"}},
		{Status: models.ClaimCompleted{}},
	}}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, nil)

	var failed *ClaimFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "x", failed.Reason)
	assert.Equal(t, uint64(7), failed.RequestID)
	assert.Equal(t, 1, lookup.calls)
}

func TestPoll_TimedOutMarkers(t *testing.T) {
	statuses := []models.ClaimStatus{
		models.ClaimFailed{Stage: models.StageTimedOut},
		models.ClaimActive{Stage: models.StageTimedOut},
	}
	for _, status := range statuses {
		clock := &fakeClock{}
		lookup := &scriptedLookup{clock: clock, responses: []*models.StatusRecord{{Status: status}}}

		_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, nil)

		var failed *ClaimFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, "Request timed out", failed.Reason)
		assert.Equal(t, 1, lookup.calls)
	}
}

func TestPoll_ActiveFailedStopsPolling(t *testing.T) {
	clock := &fakeClock{}
	lookup := &scriptedLookup{clock: clock, responses: []*models.StatusRecord{
		active(models.StageProcessing),
		{Status: models.ClaimActive{Stage: models.StageFailed, Reason: "neuron busy"}},
		active(models.StageWithdrawn),
	}}
	progress := &progressLog{}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, progress.record)

	var failed *ClaimFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "neuron busy", failed.Reason)
	assert.Equal(t, 2, lookup.calls)
	assert.Equal(t, []string{"queued", "processing started"}, progress.messages)
}

func TestPoll_RequestNotFound(t *testing.T) {
	clock := &fakeClock{}
	lookup := &scriptedLookup{clock: clock}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, nil)

	assert.ErrorIs(t, err, ErrRequestNotFound)
	assert.Equal(t, 1, lookup.calls)
}

func TestPoll_LookupErrorIsNotRetried(t *testing.T) {
	clock := &fakeClock{}
	boom := errors.New("gateway unavailable")
	lookup := &scriptedLookup{clock: clock, err: boom}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(context.Background(), 7, lookup, nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, lookup.calls)
}

func TestPoll_OneLookupPerInterval(t *testing.T) {
	clock := &fakeClock{}
	responses := make([]*models.StatusRecord, 30)
	for i := range responses {
		responses[i] = active(models.StagePending)
	}
	lookup := &scriptedLookup{clock: clock, responses: responses}

	_, err := newTestPoller(clock, 30).Poll(context.Background(), 7, lookup, nil)

	assert.ErrorIs(t, err, ErrPollingTimeout)
	require.Len(t, lookup.callTimes, 30)
	for i, at := range lookup.callTimes {
		assert.Equal(t, time.Duration(i+1)*DefaultInterval, at)
	}
	assert.LessOrEqual(t, int64(lookup.calls), int64(clock.elapsed/DefaultInterval))
}

func TestPoll_Cancelled(t *testing.T) {
	clock := &fakeClock{}
	lookup := &scriptedLookup{clock: clock, responses: []*models.StatusRecord{
		active(models.StageProcessing),
		active(models.StageBalanceRecorded),
		active(models.StageClaimAttempted),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var messages []string
	onProgress := func(msg string, _ uint64) {
		messages = append(messages, msg)
		if msg == "processing started" {
			cancel()
		}
	}

	_, err := newTestPoller(clock, DefaultMaxAttempts).Poll(ctx, 7, lookup, onProgress)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"queued", "processing started"}, messages)
	assert.Equal(t, 1, lookup.calls)
}

type cancellingLookup struct {
	cancel context.CancelFunc
	calls  int
}

func (l *cancellingLookup) ClaimStatus(context.Context, uint64) (*models.StatusRecord, error) {
	l.calls++
	l.cancel()
	return active(models.StageProcessing), nil
}

func TestPoll_CancelledDuringLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lookup := &cancellingLookup{cancel: cancel}
	progress := &progressLog{}

	_, err := newTestPoller(&fakeClock{}, DefaultMaxAttempts).Poll(ctx, 7, lookup, progress.record)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"queued"}, progress.messages)
	assert.Equal(t, 1, lookup.calls)
}

func TestPoll_RealSleep(t *testing.T) {
	lookup := &scriptedLookup{responses: []*models.StatusRecord{
		active(models.StageProcessing),
		{Status: models.ClaimCompleted{Details: models.ClaimDetails{AmountClaimed: 1}}},
	}}
	p := NewPoller(time.Millisecond, 5)

	start := time.Now()
	got, err := p.Poll(context.Background(), 7, lookup, nil)

	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.AmountClaimed)
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}

func TestNewPollerDefaults(t *testing.T) {
	p := NewPoller(0, 0)
	assert.Equal(t, DefaultInterval, p.Interval)
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	assert.Equal(t, "waiting in queue", StageMessage(models.StagePending))
}

func TestObserve(t *testing.T) {
	obs, err := Observe(3, active(models.StageClaimVerified))
	require.NoError(t, err)
	assert.Equal(t, Observation{Stage: models.StageClaimVerified, Message: "verified, withdrawing"}, obs)

	obs, err = Observe(3, &models.StatusRecord{Status: models.ClaimCompleted{Details: models.ClaimDetails{TransferBlock: 9}}})
	require.NoError(t, err)
	assert.True(t, obs.Done)
	assert.Equal(t, MessageCompleted, obs.Message)
	assert.Equal(t, uint64(9), obs.Details.TransferBlock)

	_, err = Observe(3, nil)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = Observe(3, &models.StatusRecord{Status: models.ClaimFailed{Stage: models.StageFailed}})
	var failed *ClaimFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "unknown reason", failed.Reason)
	assert.Equal(t, "claim failed: unknown reason", failed.Error())
}
