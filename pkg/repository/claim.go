package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const claimColumns = `id, owner, position_id, state, progress, reason, ledger,
	amount_claimed, amount_withdrawn, transfer_block, created_at, updated_at`

type ClaimPostgres struct {
	db *sqlx.DB
}

func NewClaimPostgres(db *sqlx.DB) *ClaimPostgres {
	return &ClaimPostgres{db: db}
}

func (r *ClaimPostgres) CreateClaim(ctx context.Context, c models.Claim) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner, position_id, state, progress)
		VALUES ($1, $2, $3, $4, $5)`, claimsTable)
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Owner, c.PositionID, c.State, c.Progress); err != nil {
		return errors.Wrapf(err, "create claim %d", c.ID)
	}
	return nil
}

func (r *ClaimPostgres) UpdateClaimProgress(ctx context.Context, id uint64, state models.ClaimState, progress string) error {
	query := fmt.Sprintf(`UPDATE %s SET state = $2, progress = $3, updated_at = now() WHERE id = $1`, claimsTable)
	return r.exec(ctx, id, query, id, state, progress)
}

func (r *ClaimPostgres) CompleteClaim(ctx context.Context, id uint64, d models.ClaimDetails) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET state = $2, progress = $3, reason = NULL, ledger = $4,
		    amount_claimed = $5, amount_withdrawn = $6, transfer_block = $7, updated_at = now()
		WHERE id = $1`, claimsTable)
	return r.exec(ctx, id, query, id, models.ClaimStateCompleted, "completed",
		d.Ledger, d.AmountClaimed, d.AmountWithdrawn, d.TransferBlock)
}

func (r *ClaimPostgres) FailClaim(ctx context.Context, id uint64, state models.ClaimState, reason string) error {
	query := fmt.Sprintf(`UPDATE %s SET state = $2, reason = $3, updated_at = now() WHERE id = $1`, claimsTable)
	return r.exec(ctx, id, query, id, state, reason)
}

func (r *ClaimPostgres) GetClaim(ctx context.Context, id uint64) (models.Claim, error) {
	var claim models.Claim
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, claimColumns, claimsTable)
	err := r.db.GetContext(ctx, &claim, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return claim, ErrNotFound
	}
	if err != nil {
		return claim, errors.Wrapf(err, "get claim %d", id)
	}
	return claim, nil
}

func (r *ClaimPostgres) GetClaims(ctx context.Context, owner string) ([]models.Claim, error) {
	var claims []models.Claim
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner = $1 ORDER BY created_at DESC`, claimColumns, claimsTable)
	if err := r.db.SelectContext(ctx, &claims, query, owner); err != nil {
		return nil, errors.Wrapf(err, "claims of %s", owner)
	}
	return claims, nil
}

func (r *ClaimPostgres) exec(ctx context.Context, id uint64, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "update claim %d", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
