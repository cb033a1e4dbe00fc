package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type AccountPostgres struct {
	db *sqlx.DB
}

func NewAccountPostgres(db *sqlx.DB) *AccountPostgres {
	return &AccountPostgres{db: db}
}

func (r *AccountPostgres) CreateAccount(ctx context.Context, account models.Account) (int64, error) {
	var id int64
	query := fmt.Sprintf(`
		INSERT INTO %s (principal, private_key, address, vault_subaccount)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, accountsTable)
	err := r.db.QueryRowContext(ctx, query,
		account.Principal,
		account.PrivateKey,
		account.Address,
		account.VaultSubaccount,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "create account %s", account.Principal)
	}
	return id, nil
}

func (r *AccountPostgres) GetAccount(ctx context.Context, principal string) (models.Account, error) {
	var account models.Account
	query := fmt.Sprintf(`SELECT id, principal, private_key, address, vault_subaccount, created_at FROM %s WHERE principal = $1`, accountsTable)
	err := r.db.GetContext(ctx, &account, query, principal)
	if errors.Is(err, sql.ErrNoRows) {
		return account, ErrNotFound
	}
	if err != nil {
		return account, errors.Wrapf(err, "get account %s", principal)
	}
	return account, nil
}

func (r *AccountPostgres) TrackToken(ctx context.Context, owner, ledger string) error {
	query := fmt.Sprintf(`INSERT INTO %s (owner, ledger) VALUES ($1, $2) ON CONFLICT DO NOTHING`, trackedTokensTable)
	if _, err := r.db.ExecContext(ctx, query, owner, ledger); err != nil {
		return errors.Wrapf(err, "track %s for %s", ledger, owner)
	}
	return nil
}

func (r *AccountPostgres) TrackedTokens(ctx context.Context, owner string) ([]string, error) {
	var ledgers []string
	query := fmt.Sprintf(`SELECT ledger FROM %s WHERE owner = $1 ORDER BY created_at, ledger`, trackedTokensTable)
	if err := r.db.SelectContext(ctx, &ledgers, query, owner); err != nil {
		return nil, errors.Wrapf(err, "tracked tokens of %s", owner)
	}
	return ledgers, nil
}
