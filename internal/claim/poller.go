package claim

import (
	"context"
	"time"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 120 // 10 minutes at the default interval

	MessageQueued    = "queued"
	MessageCompleted = "completed"

	timedOutReason = "Request timed out"
)

var (
	ErrRequestNotFound = errors.New("claim request not found")
	ErrPollingTimeout  = errors.New("claim may still be processing, check its status later")
	ErrCancelled       = errors.New("claim polling cancelled")
)

// ClaimFailedError is a terminal failure reported by the claim service.
type ClaimFailedError struct {
	RequestID uint64
	Reason    string
}

func (e *ClaimFailedError) Error() string {
	return "claim failed: " + e.Reason
}

type StatusLookup interface {
	// ClaimStatus returns nil without error when the request is unknown.
	ClaimStatus(ctx context.Context, requestID uint64) (*models.StatusRecord, error)
}

type ProgressFunc func(message string, requestID uint64)

type SleepFunc func(ctx context.Context, d time.Duration) error

var stageMessages = map[models.ClaimStage]string{
	models.StagePending:         "waiting in queue",
	models.StageProcessing:      "processing started",
	models.StageBalanceRecorded: "recording balances",
	models.StageClaimAttempted:  "claiming rewards",
	models.StageClaimVerified:   "verified, withdrawing",
	models.StageWithdrawn:       "withdrawing",
}

// StageMessage is the progress text shown for an active stage.
func StageMessage(stage models.ClaimStage) string {
	if msg, ok := stageMessages[stage]; ok {
		return msg
	}
	return stage.String()
}

// Poller watches a submitted claim request until the claim service reports a
// terminal status or MaxAttempts lookups have been made.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       SleepFunc
}

func NewPoller(interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		Sleep:       sleepContext,
	}
}

// Poll reports "queued" right away and then one progress message per newly
// observed stage. A repeated stage is not reported again; Pending counts as
// already reported by "queued".
func (p *Poller) Poll(ctx context.Context, requestID uint64, lookup StatusLookup, onProgress ProgressFunc) (models.ClaimDetails, error) {
	if onProgress == nil {
		onProgress = func(string, uint64) {}
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	log := logrus.WithField("request_id", requestID)

	onProgress(MessageQueued, requestID)
	last := models.StagePending

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.ClaimDetails{}, errors.Wrap(ErrCancelled, err.Error())
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return models.ClaimDetails{}, errors.Wrap(ErrCancelled, err.Error())
		}
		if err := ctx.Err(); err != nil {
			return models.ClaimDetails{}, errors.Wrap(ErrCancelled, err.Error())
		}

		record, err := lookup.ClaimStatus(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return models.ClaimDetails{}, errors.Wrap(ErrCancelled, ctx.Err().Error())
			}
			return models.ClaimDetails{}, errors.Wrapf(err, "claim status lookup for request %d", requestID)
		}
		if err := ctx.Err(); err != nil {
			return models.ClaimDetails{}, errors.Wrap(ErrCancelled, err.Error())
		}

		obs, err := Observe(requestID, record)
		if err != nil {
			return models.ClaimDetails{}, err
		}
		if obs.Done {
			log.WithField("attempt", attempt).Info("claim completed")
			onProgress(obs.Message, requestID)
			return obs.Details, nil
		}
		if obs.Stage != last {
			log.WithFields(logrus.Fields{"attempt": attempt, "stage": obs.Stage.String()}).Debug("claim progressed")
			onProgress(obs.Message, requestID)
			last = obs.Stage
		}
	}

	log.WithField("attempts", p.MaxAttempts).Warn("claim polling gave up")
	return models.ClaimDetails{}, ErrPollingTimeout
}

// Observation is what a single status record says about a claim that has not failed.
type Observation struct {
	Stage   models.ClaimStage
	Message string
	Done    bool
	Details models.ClaimDetails
}

// Observe interprets one status lookup result. Unknown requests and failures,
// including failed or timed out active stages, come back as errors.
func Observe(requestID uint64, record *models.StatusRecord) (Observation, error) {
	if record == nil || record.Status == nil {
		return Observation{}, ErrRequestNotFound
	}

	switch status := record.Status.(type) {
	case models.ClaimCompleted:
		return Observation{Message: MessageCompleted, Done: true, Details: status.Details}, nil
	case models.ClaimFailed:
		return Observation{}, failure(requestID, status.Stage, status.Reason)
	case models.ClaimActive:
		if status.Stage == models.StageFailed || status.Stage == models.StageTimedOut {
			return Observation{}, failure(requestID, status.Stage, status.Reason)
		}
		return Observation{Stage: status.Stage, Message: StageMessage(status.Stage)}, nil
	default:
		return Observation{}, errors.Errorf("unexpected claim status %T", status)
	}
}

func failure(requestID uint64, stage models.ClaimStage, reason string) error {
	if stage == models.StageTimedOut {
		reason = timedOutReason
	}
	if reason == "" {
		reason = "unknown reason"
	}
	return &ClaimFailedError{RequestID: requestID, Reason: reason}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
