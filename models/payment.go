package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Payment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Owner         string    `db:"owner" json:"owner"`
	Ledger        string    `db:"ledger" json:"ledger"`
	Recipient     string    `db:"recipient" json:"recipient"`
	Amount        uint64    `db:"amount" json:"amount"`
	FromBackend   uint64    `db:"from_backend" json:"from_backend"`
	FromFrontend  uint64    `db:"from_frontend" json:"from_frontend"`
	BackendBlock  *uint64   `db:"backend_block" json:"backend_block,omitempty"`
	FrontendBlock *uint64   `db:"frontend_block" json:"frontend_block,omitempty"`
	Status        string    `db:"status" json:"status"`
	Error         *string   `db:"error" json:"error,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type PaymentInput struct {
	Ledger    string `json:"ledger" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
	Amount    uint64 `json:"amount" binding:"required"`
}

type QuoteInput struct {
	Ledger string `json:"ledger" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

type Quote struct {
	Balance TokenBalance `json:"balance"`
	Amount  uint64       `json:"amount"`
	Split   Split        `json:"split"`
}
