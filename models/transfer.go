package models

// Source is one of the two custodial locations a transfer can debit.
type Source string

const (
	SourceFrontend Source = "frontend"
	SourceBackend  Source = "backend"
)

type TransferArgs struct {
	Ledger string `json:"ledger"`
	Source Source `json:"source"`
	Owner  string `json:"owner"`
	// Subaccount is the vault subaccount debited by backend transfers.
	Subaccount string `json:"subaccount,omitempty"`
	Recipient  string `json:"recipient"`
	Amount     uint64 `json:"amount"`
	Fee        uint64 `json:"fee"`
	Memo       string `json:"memo,omitempty"`
}

type TransferResult struct {
	BlockIndex uint64 `json:"block_index"`
}

type ClaimArgs struct {
	Owner      string `json:"owner"`
	PositionID string `json:"position_id"`
}
