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

const clinicColumns = `
	id, name, tax_id, is_active, created_at, updated_at, deleted_at
`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, tax_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	clinic.ID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.TaxID,
		clinic.IsActive,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT ` + clinicColumns + `
		FROM clinics
		WHERE id = $1 AND deleted_at IS NULL
	`
	var clinic model.Clinic
	err := r.ext(ctx).GetContext(ctx, &clinic, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("clinic")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, tax_id = $2, is_active = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	clinic.UpdatedAt = time.Now()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		clinic.Name,
		clinic.TaxID,
		clinic.IsActive,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinic")
	}
	return nil
}

func (r *clinicRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE clinics
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinic")
	}
	return nil
}

func (r *clinicRepository) List(ctx context.Context) ([]*model.Clinic, error) {
	query := `
		SELECT ` + clinicColumns + `
		FROM clinics
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`
	clinics := []*model.Clinic{}
	err := r.ext(ctx).SelectContext(ctx, &clinics, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}
