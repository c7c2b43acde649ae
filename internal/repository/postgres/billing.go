package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

const transactionColumns = `
	id, patient_id, appointment_id, type, method, amount_cents,
	description, transaction_date, created_at, updated_at, deleted_at
`

func (r *billingRepository) Create(ctx context.Context, transaction *model.FinancialTransaction) error {
	query := `
		INSERT INTO financial_transactions (
			id, patient_id, appointment_id, type, method, amount_cents,
			description, transaction_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	transaction.ID = uuid.New()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		transaction.ID,
		transaction.PatientID,
		transaction.AppointmentID,
		transaction.Type,
		transaction.Method,
		transaction.AmountCents,
		transaction.Description,
		transaction.TransactionDate,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)
	if err != nil {
		// A unique index on appointment_id backs the one-invoice-per-
		// appointment rule.
		return fmt.Errorf("failed to create transaction: %w", mapConflict(err))
	}
	return nil
}

func (r *billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.FinancialTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM financial_transactions
		WHERE id = $1 AND deleted_at IS NULL
	`
	var transaction model.FinancialTransaction
	err := r.ext(ctx).GetContext(ctx, &transaction, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

func (r *billingRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.FinancialTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM financial_transactions
		WHERE appointment_id = $1 AND deleted_at IS NULL
	`
	var transaction model.FinancialTransaction
	err := r.ext(ctx).GetContext(ctx, &transaction, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by appointment: %w", err)
	}
	return &transaction, nil
}

func (r *billingRepository) Update(ctx context.Context, transaction *model.FinancialTransaction) error {
	query := `
		UPDATE financial_transactions
		SET type = $1, method = $2, amount_cents = $3, description = $4,
			transaction_date = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	transaction.UpdatedAt = time.Now()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		transaction.Type,
		transaction.Method,
		transaction.AmountCents,
		transaction.Description,
		transaction.TransactionDate,
		transaction.UpdatedAt,
		transaction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("transaction")
	}
	return nil
}

func (r *billingRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE financial_transactions
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("transaction")
	}
	return nil
}

func (r *billingRepository) List(ctx context.Context, patientID *uuid.UUID) ([]*model.FinancialTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM financial_transactions
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}

	if patientID != nil {
		query += " AND patient_id = $1"
		args = append(args, *patientID)
	}

	query += " ORDER BY transaction_date DESC"

	transactions := []*model.FinancialTransaction{}
	err := r.ext(ctx).SelectContext(ctx, &transactions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
