package service

import (
	"context"
	"strings"

	"github.com/Snassy-icp/app-sneeddao-sub001/internal/wallet"
	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/repository"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidInput    = errors.New("invalid input")
)

func invalid(msg string) error {
	return errors.Wrap(ErrInvalidInput, msg)
}

type AccountService struct {
	repos repository.Account
}

func NewAccountService(repos repository.Account) *AccountService {
	return &AccountService{repos: repos}
}

// Login returns the account of principal, creating it with fresh custody keys
// on first use.
func (s *AccountService) Login(ctx context.Context, principal string) (models.Account, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return models.Account{}, invalid("principal is required")
	}

	account, err := s.repos.GetAccount(ctx, principal)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Account{}, err
	}

	custody, err := wallet.GenerateCustody(principal)
	if err != nil {
		return models.Account{}, errors.Wrap(err, "generate custody keys")
	}
	account = models.Account{
		Principal:       principal,
		PrivateKey:      custody.PrivateKey,
		Address:         custody.Address,
		VaultSubaccount: custody.VaultSubaccount,
	}
	id, err := s.repos.CreateAccount(ctx, account)
	if err != nil {
		return models.Account{}, err
	}
	account.ID = id

	logrus.WithField("principal", principal).Info("account created")
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, principal string) (models.Account, error) {
	account, err := s.repos.GetAccount(ctx, principal)
	if errors.Is(err, repository.ErrNotFound) {
		return account, ErrAccountNotFound
	}
	return account, err
}

func (s *AccountService) TrackToken(ctx context.Context, principal, ledger string) error {
	if strings.TrimSpace(ledger) == "" {
		return invalid("ledger is required")
	}
	if _, err := s.GetAccount(ctx, principal); err != nil {
		return err
	}
	return s.repos.TrackToken(ctx, principal, ledger)
}
