package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const paymentColumns = `id, owner, ledger, recipient, amount, from_backend, from_frontend,
	backend_block, frontend_block, status, error, created_at, updated_at`

type PaymentPostgres struct {
	db *sqlx.DB
}

func NewPaymentPostgres(db *sqlx.DB) *PaymentPostgres {
	return &PaymentPostgres{db: db}
}

func (r *PaymentPostgres) CreatePayment(ctx context.Context, p models.Payment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner, ledger, recipient, amount, from_backend, from_frontend, status)
		VALUES (:id, :owner, :ledger, :recipient, :amount, :from_backend, :from_frontend, :status)`, paymentsTable)
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return errors.Wrapf(err, "create payment %s", p.ID)
	}
	return nil
}

// FinishPayment stores the outcome of the transfers of a payment.
func (r *PaymentPostgres) FinishPayment(ctx context.Context, p models.Payment) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET backend_block = $2, frontend_block = $3, status = $4, error = $5, updated_at = now()
		WHERE id = $1`, paymentsTable)
	res, err := r.db.ExecContext(ctx, query, p.ID, p.BackendBlock, p.FrontendBlock, p.Status, p.Error)
	if err != nil {
		return errors.Wrapf(err, "finish payment %s", p.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaymentPostgres) GetPayments(ctx context.Context, owner string) ([]models.Payment, error) {
	var payments []models.Payment
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner = $1 ORDER BY created_at DESC`, paymentColumns, paymentsTable)
	if err := r.db.SelectContext(ctx, &payments, query, owner); err != nil {
		return nil, errors.Wrapf(err, "payments of %s", owner)
	}
	return payments, nil
}

func (r *PaymentPostgres) GetPayment(ctx context.Context, id uuid.UUID) (models.Payment, error) {
	var payment models.Payment
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, paymentColumns, paymentsTable)
	err := r.db.GetContext(ctx, &payment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return payment, ErrNotFound
	}
	if err != nil {
		return payment, errors.Wrapf(err, "get payment %s", id)
	}
	return payment, nil
}
