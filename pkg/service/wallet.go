package service

import (
	"context"
	"strings"

	"github.com/Snassy-icp/app-sneeddao-sub001/internal/funds"
	"github.com/Snassy-icp/app-sneeddao-sub001/internal/wallet"
	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/cache"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const portfolioConcurrency = 8

var ErrPaymentNotFound = errors.New("payment not found")

type WalletService struct {
	accounts   repository.Account
	payments   repository.Payment
	gateway    Gateway
	vaultOwner string
	ledgers    *cache.LedgerCache
	prices     *cache.PriceCache
}

func NewWalletService(accounts repository.Account, payments repository.Payment, gateway Gateway, cfg Config) *WalletService {
	return &WalletService{
		accounts:   accounts,
		payments:   payments,
		gateway:    gateway,
		vaultOwner: cfg.VaultOwner,
		ledgers:    cache.NewLedgerCache(cfg.LockTTL),
		prices:     cache.NewPriceCache(cfg.PriceTTL),
	}
}

// Balance fetches both custodial balances of principal on ledger. Backend is
// the vault balance minus everything the lock service holds.
func (s *WalletService) Balance(ctx context.Context, principal, ledger string) (models.TokenBalance, error) {
	account, err := s.account(ctx, principal)
	if err != nil {
		return models.TokenBalance{}, err
	}
	return s.balance(ctx, account, ledger)
}

func (s *WalletService) balance(ctx context.Context, account models.Account, ledger string) (models.TokenBalance, error) {
	if strings.TrimSpace(ledger) == "" {
		return models.TokenBalance{}, invalid("ledger is required")
	}
	meta, err := s.ledgerMeta(ctx, ledger)
	if err != nil {
		return models.TokenBalance{}, err
	}

	var frontend, vault, locked uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		frontend, err = s.gateway.Balance(gctx, ledger, account.Principal, "")
		return err
	})
	g.Go(func() error {
		var err error
		vault, err = s.gateway.Balance(gctx, ledger, s.vaultOwner, account.VaultSubaccount)
		return err
	})
	g.Go(func() error {
		var err error
		locked, err = s.lockedAmount(gctx, account.Principal, ledger)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.TokenBalance{}, err
	}

	backend := uint64(0)
	if vault > locked {
		backend = vault - locked
	}
	return models.TokenBalance{
		Ledger:   ledger,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Frontend: frontend,
		Backend:  backend,
		Locked:   locked,
		Fee:      meta.Fee,
	}, nil
}

func (s *WalletService) ledgerMeta(ctx context.Context, ledger string) (models.LedgerMeta, error) {
	if meta, ok := s.ledgers.Ledger(ledger); ok {
		return meta, nil
	}
	meta, err := s.gateway.LedgerMeta(ctx, ledger)
	if err != nil {
		return models.LedgerMeta{}, err
	}
	s.ledgers.RememberLedger(meta)
	return meta, nil
}

func (s *WalletService) lockedAmount(ctx context.Context, principal, ledger string) (uint64, error) {
	if amount, ok := s.ledgers.Locked(principal, ledger); ok {
		return amount, nil
	}
	locks, err := s.gateway.Locks(ctx, ledger, principal)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, l := range locks {
		total += l.Amount
	}
	s.ledgers.SetLocked(principal, ledger, total)
	return total, nil
}

// Refresh drops cached lock totals of principal so the next read hits the lock service.
func (s *WalletService) Refresh(principal string) {
	s.ledgers.Invalidate(principal)
}

// Portfolio values every tracked token of principal in USD. Unpriced tokens
// are listed with a zero value.
func (s *WalletService) Portfolio(ctx context.Context, principal string) (models.Portfolio, error) {
	account, err := s.account(ctx, principal)
	if err != nil {
		return models.Portfolio{}, err
	}
	ledgers, err := s.accounts.TrackedTokens(ctx, principal)
	if err != nil {
		return models.Portfolio{}, err
	}

	entries := make([]models.PortfolioEntry, len(ledgers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(portfolioConcurrency)
	for i, ledger := range ledgers {
		i, ledger := i, ledger
		g.Go(func() error {
			entry, err := s.portfolioEntry(gctx, account, ledger)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Portfolio{}, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.ValueUSD)
	}
	return models.Portfolio{Owner: principal, Entries: entries, TotalUSD: total}, nil
}

func (s *WalletService) portfolioEntry(ctx context.Context, account models.Account, ledger string) (models.PortfolioEntry, error) {
	balance, err := s.balance(ctx, account, ledger)
	if err != nil {
		return models.PortfolioEntry{}, err
	}
	entry := models.PortfolioEntry{
		Balance:  balance,
		Amount:   decimal.NewFromUint64(balance.Total()).Shift(-balance.Decimals),
		ValueUSD: decimal.Zero,
	}

	price, ok := s.prices.Get(ledger)
	if !ok {
		price, ok, err = s.gateway.PriceUSD(ctx, ledger)
		if err != nil {
			return models.PortfolioEntry{}, err
		}
		if ok {
			s.prices.Set(ledger, price)
		}
	}
	if ok {
		entry.PriceUSD = &price
		entry.ValueUSD = entry.Amount.Mul(price)
	}
	return entry, nil
}

// Quote shows how a payment would be sourced without moving funds.
func (s *WalletService) Quote(ctx context.Context, principal string, input models.QuoteInput) (models.Quote, error) {
	balance, err := s.Balance(ctx, principal, input.Ledger)
	if err != nil {
		return models.Quote{}, err
	}
	split, err := funds.Route(input.Amount, balance)
	if err != nil {
		return models.Quote{}, err
	}
	return models.Quote{Balance: balance, Amount: input.Amount, Split: split}, nil
}

// Pay sources input.Amount from the vault and the wallet, vault first, with at
// most one transfer from each. Nothing is sent when the route fails, and the
// wallet is not debited when the vault transfer fails.
func (s *WalletService) Pay(ctx context.Context, principal string, input models.PaymentInput) (models.Payment, error) {
	if strings.TrimSpace(input.Recipient) == "" {
		return models.Payment{}, invalid("recipient is required")
	}
	account, err := s.account(ctx, principal)
	if err != nil {
		return models.Payment{}, err
	}
	balance, err := s.balance(ctx, account, input.Ledger)
	if err != nil {
		return models.Payment{}, err
	}
	split, err := funds.Route(input.Amount, balance)
	if err != nil {
		return models.Payment{}, err
	}
	if split.FromFrontend > 0 {
		if err := wallet.VerifyCustody(account.PrivateKey, account.Address); err != nil {
			return models.Payment{}, errors.Wrapf(err, "custody of %s", principal)
		}
	}

	payment := models.Payment{
		ID:           uuid.New(),
		Owner:        principal,
		Ledger:       input.Ledger,
		Recipient:    input.Recipient,
		Amount:       input.Amount,
		FromBackend:  split.FromBackend,
		FromFrontend: split.FromFrontend,
		Status:       models.PaymentPending,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return models.Payment{}, err
	}
	log := logrus.WithFields(logrus.Fields{"payment": payment.ID, "owner": principal, "ledger": input.Ledger})
	defer s.Refresh(principal)

	transfer := models.TransferArgs{
		Ledger:    input.Ledger,
		Owner:     principal,
		Recipient: input.Recipient,
		Fee:       balance.Fee,
		Memo:      payment.ID.String(),
	}

	if split.FromBackend > 0 {
		args := transfer
		args.Source = models.SourceBackend
		args.Subaccount = account.VaultSubaccount
		args.Amount = split.FromBackend
		block, err := s.gateway.Transfer(ctx, args, "")
		if err != nil {
			return s.failPayment(ctx, payment, err)
		}
		payment.BackendBlock = &block
	}

	if split.FromFrontend > 0 {
		args := transfer
		args.Source = models.SourceFrontend
		args.Amount = split.FromFrontend
		block, err := s.gateway.Transfer(ctx, args, account.PrivateKey)
		if err != nil {
			return s.failPayment(ctx, payment, err)
		}
		payment.FrontendBlock = &block
	}

	payment.Status = models.PaymentCompleted
	if err := s.payments.FinishPayment(ctx, payment); err != nil {
		return payment, err
	}
	log.WithFields(logrus.Fields{
		"amount":        split.Sum(),
		"from_backend":  split.FromBackend,
		"from_frontend": split.FromFrontend,
	}).Info("payment completed")
	return payment, nil
}

func (s *WalletService) failPayment(ctx context.Context, payment models.Payment, cause error) (models.Payment, error) {
	msg := cause.Error()
	payment.Status = models.PaymentFailed
	payment.Error = &msg
	if err := s.payments.FinishPayment(ctx, payment); err != nil {
		logrus.WithError(err).WithField("payment", payment.ID).Error("failed to record payment failure")
	}
	return payment, errors.Wrapf(cause, "payment %s", payment.ID)
}

func (s *WalletService) GetPayments(ctx context.Context, principal string) ([]models.Payment, error) {
	if _, err := s.account(ctx, principal); err != nil {
		return nil, err
	}
	return s.payments.GetPayments(ctx, principal)
}

// GetPayment returns one payment of principal. Payments of other owners are not found.
func (s *WalletService) GetPayment(ctx context.Context, principal string, id uuid.UUID) (models.Payment, error) {
	payment, err := s.payments.GetPayment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && payment.Owner != principal) {
		return models.Payment{}, ErrPaymentNotFound
	}
	return payment, err
}

func (s *WalletService) account(ctx context.Context, principal string) (models.Account, error) {
	account, err := s.accounts.GetAccount(ctx, principal)
	if errors.Is(err, repository.ErrNotFound) {
		return account, ErrAccountNotFound
	}
	return account, err
}
