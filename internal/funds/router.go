package funds

import (
	"errors"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient combined balance to cover amount plus fees")
)

// Split decides how much of amount to take from the backend vault (B) and the
// frontend wallet (A). Each source is charged fee once for its single outgoing
// transfer, so a source's usable balance is its balance minus fee. The vault is
// drained first. On success the parts add up to amount; otherwise both are zero.
func Split(amount, backend, frontend, fee uint64) models.Split {
	usableB := usable(backend, fee)
	usableA := usable(frontend, fee)

	if usableB > 0 && amount <= usableB {
		return models.Split{FromBackend: amount}
	}
	if usableA > 0 && amount <= usableA {
		return models.Split{FromFrontend: amount}
	}

	switch {
	case usableB > 0:
		remaining := amount - usableB
		if usableA > 0 && remaining <= usableA {
			return models.Split{FromBackend: usableB, FromFrontend: remaining}
		}
		return models.Split{}
	case usableA > 0:
		if amount <= usableA {
			return models.Split{FromFrontend: amount}
		}
		return models.Split{}
	default:
		return models.Split{}
	}
}

// Route is Split for a token balance, turning the zero result into ErrInsufficientFunds.
func Route(amount uint64, balance models.TokenBalance) (models.Split, error) {
	if amount == 0 {
		return models.Split{}, ErrInvalidAmount
	}
	split := Split(amount, balance.Backend, balance.Frontend, balance.Fee)
	if split.IsZero() {
		return split, ErrInsufficientFunds
	}
	return split, nil
}

// usable floors at zero: a balance not above the fee cannot send anything.
func usable(balance, fee uint64) uint64 {
	if balance <= fee {
		return 0
	}
	return balance - fee
}
