package models

import "github.com/shopspring/decimal"

// TokenBalance is the balance of one token split across the two custodial sources.
// All amounts are in the token's smallest units.
type TokenBalance struct {
	Ledger   string `json:"ledger"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
	Frontend uint64 `json:"frontend"` // direct wallet account
	Backend  uint64 `json:"backend"`  // vault subaccount, net of Locked
	Locked   uint64 `json:"locked"`
	Fee      uint64 `json:"fee"`
}

// Total is everything the user owns of the token, locked funds included.
func (b TokenBalance) Total() uint64 {
	return b.Frontend + b.Backend + b.Locked
}

// Split says how much of a payment comes from each source. A zero sum means the
// payment cannot be covered.
type Split struct {
	FromBackend  uint64 `json:"from_backend"`
	FromFrontend uint64 `json:"from_frontend"`
}

func (s Split) Sum() uint64 {
	return s.FromBackend + s.FromFrontend
}

func (s Split) IsZero() bool {
	return s.FromBackend == 0 && s.FromFrontend == 0
}

type LedgerMeta struct {
	Ledger   string `json:"ledger"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
	Fee      uint64 `json:"fee"`
}

type PortfolioEntry struct {
	Balance  TokenBalance     `json:"balance"`
	Amount   decimal.Decimal  `json:"amount"`
	PriceUSD *decimal.Decimal `json:"price_usd,omitempty"`
	ValueUSD decimal.Decimal  `json:"value_usd"`
}

type Portfolio struct {
	Owner    string           `json:"owner"`
	Entries  []PortfolioEntry `json:"entries"`
	TotalUSD decimal.Decimal  `json:"total_usd"`
}

type TrackTokenInput struct {
	Ledger string `json:"ledger" binding:"required"`
}

// Lock is one lock held by the lock service over vault funds.
type Lock struct {
	ID        uint64 `json:"id"`
	Amount    uint64 `json:"amount"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}
