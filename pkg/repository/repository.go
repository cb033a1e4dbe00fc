package repository

import (
	"context"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("record not found")

type Account interface {
	CreateAccount(ctx context.Context, account models.Account) (int64, error)
	GetAccount(ctx context.Context, principal string) (models.Account, error)
	TrackToken(ctx context.Context, owner, ledger string) error
	TrackedTokens(ctx context.Context, owner string) ([]string, error)
}

type Payment interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
	FinishPayment(ctx context.Context, payment models.Payment) error
	GetPayments(ctx context.Context, owner string) ([]models.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (models.Payment, error)
}

type Claim interface {
	CreateClaim(ctx context.Context, claim models.Claim) error
	UpdateClaimProgress(ctx context.Context, id uint64, state models.ClaimState, progress string) error
	CompleteClaim(ctx context.Context, id uint64, details models.ClaimDetails) error
	FailClaim(ctx context.Context, id uint64, state models.ClaimState, reason string) error
	GetClaim(ctx context.Context, id uint64) (models.Claim, error)
	GetClaims(ctx context.Context, owner string) ([]models.Claim, error)
}

type Repository struct {
	Account
	Payment
	Claim
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Account: NewAccountPostgres(db),
		Payment: NewPaymentPostgres(db),
		Claim:   NewClaimPostgres(db),
	}
}
