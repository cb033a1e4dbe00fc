package models

import "time"

// Account binds a principal to its frontend wallet address and backend vault subaccount.
type Account struct {
	ID              int64     `db:"id" json:"id"`
	Principal       string    `db:"principal" json:"principal"`
	PrivateKey      string    `db:"private_key" json:"-"`
	Address         string    `db:"address" json:"address"`
	VaultSubaccount string    `db:"vault_subaccount" json:"vault_subaccount"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type LoginInput struct {
	Principal string `json:"principal" binding:"required"`
}

type TrackedToken struct {
	Owner     string    `db:"owner" json:"owner"`
	Ledger    string    `db:"ledger" json:"ledger"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
