package service

import (
	"context"
	"time"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/notify"
	"github.com/Snassy-icp/app-sneeddao-sub001/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway is the set of platform calls the services depend on.
type Gateway interface {
	LedgerMeta(ctx context.Context, ledger string) (models.LedgerMeta, error)
	Balance(ctx context.Context, ledger, owner, subaccount string) (uint64, error)
	Locks(ctx context.Context, ledger, owner string) ([]models.Lock, error)
	PriceUSD(ctx context.Context, ledger string) (decimal.Decimal, bool, error)
	Transfer(ctx context.Context, args models.TransferArgs, privateKey string) (uint64, error)
	SubmitClaim(ctx context.Context, args models.ClaimArgs) (uint64, error)
	ClaimStatus(ctx context.Context, requestID uint64) (*models.StatusRecord, error)
}

type Account interface {
	Login(ctx context.Context, principal string) (models.Account, error)
	GetAccount(ctx context.Context, principal string) (models.Account, error)
	TrackToken(ctx context.Context, principal, ledger string) error
}

type Wallet interface {
	Balance(ctx context.Context, principal, ledger string) (models.TokenBalance, error)
	Refresh(principal string)
	Portfolio(ctx context.Context, principal string) (models.Portfolio, error)
	Quote(ctx context.Context, principal string, input models.QuoteInput) (models.Quote, error)
	Pay(ctx context.Context, principal string, input models.PaymentInput) (models.Payment, error)
	GetPayments(ctx context.Context, principal string) ([]models.Payment, error)
	GetPayment(ctx context.Context, principal string, id uuid.UUID) (models.Payment, error)
}

type Claim interface {
	Submit(ctx context.Context, principal, positionID string) (models.Claim, error)
	Get(ctx context.Context, principal string, id uint64) (models.Claim, error)
	List(ctx context.Context, principal string) ([]models.Claim, error)
	Check(ctx context.Context, principal string, id uint64) (models.Claim, error)
	Shutdown()
}

type Config struct {
	// VaultOwner owns the vault subaccounts on every ledger.
	VaultOwner   string
	PollInterval time.Duration
	MaxAttempts  int
	PriceTTL     time.Duration
	LockTTL      time.Duration
	Notifier     notify.Notifier
}

type Service struct {
	Account
	Wallet
	Claim
}

func NewService(repos *repository.Repository, gateway Gateway, cfg Config) *Service {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.LogNotifier{}
	}
	return &Service{
		Account: NewAccountService(repos.Account),
		Wallet:  NewWalletService(repos.Account, repos.Payment, gateway, cfg),
		Claim:   NewClaimService(repos.Claim, repos.Account, gateway, cfg),
	}
}
