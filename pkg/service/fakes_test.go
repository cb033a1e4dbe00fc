package service

import (
	"context"
	"sync"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type balanceKey struct {
	ledger, owner, subaccount string
}

type fakeGateway struct {
	mu         sync.Mutex
	meta       map[string]models.LedgerMeta
	balances   map[balanceKey]uint64
	locks      map[string][]models.Lock
	prices     map[string]decimal.Decimal
	transfers  []models.TransferArgs
	signedWith []string
	failSource models.Source
	lockCalls  int
	requestID  uint64
	statuses   []*models.StatusRecord
	statusErr  error
	lookups    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		meta:     map[string]models.LedgerMeta{},
		balances: map[balanceKey]uint64{},
		locks:    map[string][]models.Lock{},
		prices:   map[string]decimal.Decimal{},
	}
}

func (g *fakeGateway) LedgerMeta(_ context.Context, ledger string) (models.LedgerMeta, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	meta, ok := g.meta[ledger]
	if !ok {
		return models.LedgerMeta{}, errors.Errorf("unknown ledger %s", ledger)
	}
	return meta, nil
}

func (g *fakeGateway) Balance(_ context.Context, ledger, owner, subaccount string) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[balanceKey{ledger, owner, subaccount}], nil
}

func (g *fakeGateway) Locks(_ context.Context, ledger, owner string) ([]models.Lock, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lockCalls++
	return g.locks[ledger+"/"+owner], nil
}

func (g *fakeGateway) PriceUSD(_ context.Context, ledger string) (decimal.Decimal, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	price, ok := g.prices[ledger]
	return price, ok, nil
}

func (g *fakeGateway) Transfer(_ context.Context, args models.TransferArgs, privateKey string) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if args.Source == g.failSource {
		return 0, errors.New("ledger rejected transfer")
	}
	g.transfers = append(g.transfers, args)
	g.signedWith = append(g.signedWith, privateKey)
	return uint64(100 + len(g.transfers)), nil
}

func (g *fakeGateway) SubmitClaim(context.Context, models.ClaimArgs) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requestID, nil
}

func (g *fakeGateway) ClaimStatus(context.Context, uint64) (*models.StatusRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	if len(g.statuses) == 0 {
		return nil, nil
	}
	record := g.statuses[0]
	if len(g.statuses) > 1 {
		g.statuses = g.statuses[1:]
	}
	return record, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	tracked  map[string][]string
}

func newFakeAccounts(accounts ...models.Account) *fakeAccounts {
	f := &fakeAccounts{accounts: map[string]models.Account{}, tracked: map[string][]string{}}
	for _, a := range accounts {
		f.accounts[a.Principal] = a
	}
	return f
}

func (f *fakeAccounts) CreateAccount(_ context.Context, account models.Account) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.ID = int64(len(f.accounts) + 1)
	f.accounts[account.Principal] = account
	return account.ID, nil
}

func (f *fakeAccounts) GetAccount(_ context.Context, principal string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[principal]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) TrackToken(_ context.Context, owner, ledger string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked[owner] = append(f.tracked[owner], ledger)
	return nil
}

func (f *fakeAccounts) TrackedTokens(_ context.Context, owner string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracked[owner], nil
}

type fakePayments struct {
	mu       sync.Mutex
	payments map[uuid.UUID]models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{payments: map[uuid.UUID]models.Payment{}}
}

func (f *fakePayments) CreatePayment(_ context.Context, p models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = p
	return nil
}

func (f *fakePayments) FinishPayment(_ context.Context, p models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.payments[p.ID] = p
	return nil
}

func (f *fakePayments) GetPayments(_ context.Context, owner string) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) GetPayment(_ context.Context, id uuid.UUID) (models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return models.Payment{}, repository.ErrNotFound
	}
	return p, nil
}

type fakeClaims struct {
	mu     sync.Mutex
	claims map[uint64]models.Claim
	steps  []string
}

func newFakeClaims() *fakeClaims {
	return &fakeClaims{claims: map[uint64]models.Claim{}}
}

func (f *fakeClaims) CreateClaim(_ context.Context, c models.Claim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims[c.ID] = c
	return nil
}

func (f *fakeClaims) UpdateClaimProgress(_ context.Context, id uint64, state models.ClaimState, progress string) error {
	return f.update(id, func(c *models.Claim) {
		c.State = state
		c.Progress = progress
		f.steps = append(f.steps, progress)
	})
}

func (f *fakeClaims) CompleteClaim(_ context.Context, id uint64, d models.ClaimDetails) error {
	return f.update(id, func(c *models.Claim) {
		c.State = models.ClaimStateCompleted
		c.Progress = "completed"
		c.Ledger = &d.Ledger
		c.AmountClaimed = &d.AmountClaimed
		c.AmountWithdrawn = &d.AmountWithdrawn
		c.TransferBlock = &d.TransferBlock
	})
}

func (f *fakeClaims) FailClaim(_ context.Context, id uint64, state models.ClaimState, reason string) error {
	return f.update(id, func(c *models.Claim) {
		c.State = state
		c.Reason = &reason
	})
}

func (f *fakeClaims) update(id uint64, fn func(*models.Claim)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&c)
	f.claims[id] = c
	return nil
}

func (f *fakeClaims) GetClaim(_ context.Context, id uint64) (models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.claims[id]
	if !ok {
		return models.Claim{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeClaims) GetClaims(_ context.Context, owner string) ([]models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Claim
	for _, c := range f.claims {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	claims []models.Claim
}

func (n *recordingNotifier) ClaimFinished(_ context.Context, c models.Claim) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.claims = append(n.claims, c)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.claims)
}
