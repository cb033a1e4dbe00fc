package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Snassy-icp/app-sneeddao-sub001/internal/claim"
	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/notify"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/repository"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const storeTimeout = 10 * time.Second

var (
	ErrClaimNotFound = errors.New("claim not found")
	ErrShuttingDown  = errors.New("claim service is shutting down")
)

type ClaimService struct {
	repos    repository.Claim
	accounts repository.Account
	gateway  Gateway
	poller   *claim.Poller
	notifier notify.Notifier

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewClaimService(repos repository.Claim, accounts repository.Account, gateway Gateway, cfg Config) *ClaimService {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ClaimService{
		repos:    repos,
		accounts: accounts,
		gateway:  gateway,
		poller:   claim.NewPoller(cfg.PollInterval, cfg.MaxAttempts),
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit hands the claim of positionID to the claim service and watches it in
// the background. The returned claim is in the queued state.
func (s *ClaimService) Submit(ctx context.Context, principal, positionID string) (models.Claim, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return models.Claim{}, invalid("position id is required")
	}
	if _, err := s.accounts.GetAccount(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Claim{}, ErrAccountNotFound
		}
		return models.Claim{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Claim{}, ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.Unlock()

	c, err := s.submit(ctx, principal, positionID)
	if err != nil {
		s.wg.Done()
		return models.Claim{}, err
	}
	go func() {
		defer s.wg.Done()
		s.watch(c)
	}()
	return c, nil
}

func (s *ClaimService) submit(ctx context.Context, principal, positionID string) (models.Claim, error) {
	requestID, err := s.gateway.SubmitClaim(ctx, models.ClaimArgs{Owner: principal, PositionID: positionID})
	if err != nil {
		return models.Claim{}, err
	}

	c := models.Claim{
		ID:         requestID,
		Owner:      principal,
		PositionID: positionID,
		State:      models.ClaimStateQueued,
		Progress:   claim.MessageQueued,
	}
	if err := s.repos.CreateClaim(ctx, c); err != nil {
		return models.Claim{}, err
	}
	return c, nil
}

func (s *ClaimService) watch(c models.Claim) {
	log := logrus.WithFields(logrus.Fields{"request_id": c.ID, "owner": c.Owner})

	details, err := s.poller.Poll(s.ctx, c.ID, s.gateway, func(message string, requestID uint64) {
		if message == claim.MessageQueued || message == claim.MessageCompleted {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := s.repos.UpdateClaimProgress(ctx, requestID, models.ClaimStateActive, message); err != nil {
			log.WithError(err).Warn("failed to store claim progress")
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err != nil {
		state := failedState(err)
		if storeErr := s.repos.FailClaim(ctx, c.ID, state, reason(err)); storeErr != nil {
			log.WithError(storeErr).Error("failed to store claim outcome")
		}
		if state == models.ClaimStateCancelled {
			log.Info("claim watch cancelled")
			return
		}
		log.WithError(err).WithField("state", state).Warn("claim did not complete")
	} else {
		if storeErr := s.repos.CompleteClaim(ctx, c.ID, details); storeErr != nil {
			log.WithError(storeErr).Error("failed to store claim outcome")
		}
		log.WithField("amount_withdrawn", details.AmountWithdrawn).Info("claim completed")
	}

	s.notifyFinished(ctx, c.ID)
}

func (s *ClaimService) notifyFinished(ctx context.Context, id uint64) {
	stored, err := s.repos.GetClaim(ctx, id)
	if err != nil {
		logrus.WithError(err).WithField("request_id", id).Warn("claim notification skipped")
		return
	}
	if err := s.notifier.ClaimFinished(ctx, stored); err != nil {
		logrus.WithError(err).WithField("request_id", id).Warn("claim notification failed")
	}
}

func failedState(err error) models.ClaimState {
	var failed *claim.ClaimFailedError
	switch {
	case errors.As(err, &failed), errors.Is(err, claim.ErrRequestNotFound):
		return models.ClaimStateFailed
	case errors.Is(err, claim.ErrPollingTimeout):
		return models.ClaimStateTimeout
	case errors.Is(err, claim.ErrCancelled):
		return models.ClaimStateCancelled
	default:
		return models.ClaimStateError
	}
}

func reason(err error) string {
	var failed *claim.ClaimFailedError
	if errors.As(err, &failed) {
		return failed.Reason
	}
	return err.Error()
}

func (s *ClaimService) Get(ctx context.Context, principal string, id uint64) (models.Claim, error) {
	c, err := s.repos.GetClaim(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && c.Owner != principal) {
		return models.Claim{}, ErrClaimNotFound
	}
	return c, err
}

func (s *ClaimService) List(ctx context.Context, principal string) ([]models.Claim, error) {
	return s.repos.GetClaims(ctx, principal)
}

// Check makes one status lookup for a claim. Completed and failed claims are
// returned as stored. A claim nobody is watching any more that is still in
// progress keeps its state and yields ErrPollingTimeout.
func (s *ClaimService) Check(ctx context.Context, principal string, id uint64) (models.Claim, error) {
	c, err := s.Get(ctx, principal, id)
	if err != nil || c.State.Terminal() {
		return c, err
	}
	watched := c.State == models.ClaimStateQueued || c.State == models.ClaimStateActive

	record, err := s.gateway.ClaimStatus(ctx, id)
	if err != nil {
		return c, err
	}
	obs, err := claim.Observe(id, record)
	switch {
	case err != nil:
		err = s.repos.FailClaim(ctx, id, failedState(err), reason(err))
	case obs.Done:
		err = s.repos.CompleteClaim(ctx, id, obs.Details)
	case watched:
		err = s.repos.UpdateClaimProgress(ctx, id, models.ClaimStateActive, obs.Message)
	default:
		err = s.repos.UpdateClaimProgress(ctx, id, c.State, obs.Message)
	}
	if err != nil {
		return c, err
	}

	stored, err := s.repos.GetClaim(ctx, id)
	if err != nil {
		return c, err
	}
	if stored.State.Terminal() {
		if !watched {
			s.notifyFinished(ctx, id)
		}
		return stored, nil
	}
	if !watched {
		return stored, errors.Wrapf(claim.ErrPollingTimeout, "request %d is %s", id, obs.Message)
	}
	return stored, nil
}

// Shutdown stops every background watch and waits for them to record their
// state. Later submissions fail with ErrShuttingDown.
func (s *ClaimService) Shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
