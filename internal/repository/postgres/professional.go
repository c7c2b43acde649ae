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

const professionalColumns = `
	id, full_name, registration_number, council, specialty,
	created_at, updated_at, deleted_at
`

func (r *professionalRepository) Create(ctx context.Context, professional *model.Professional) error {
	query := `
		INSERT INTO professionals (
			id, full_name, registration_number, council, specialty,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	professional.ID = uuid.New()
	professional.CreatedAt = time.Now()
	professional.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		professional.ID,
		professional.FullName,
		professional.RegistrationNumber,
		professional.Council,
		professional.Specialty,
		professional.CreatedAt,
		professional.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}

	for _, clinicID := range professional.ClinicIDs {
		if err := r.AssignClinic(ctx, professional.ID, clinicID); err != nil {
			return err
		}
	}
	return nil
}

// Get resolves the professional together with its affiliated-clinic id
// set. The affiliation set is read fresh on every call; the engine
// relies on it never being stale or cached.
func (r *professionalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	query := `
		SELECT ` + professionalColumns + `
		FROM professionals
		WHERE id = $1 AND deleted_at IS NULL
	`
	var professional model.Professional
	err := r.ext(ctx).GetContext(ctx, &professional, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("professional")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}

	clinicIDs := []uuid.UUID{}
	err = r.ext(ctx).SelectContext(ctx, &clinicIDs, `
		SELECT clinic_id FROM professional_clinics WHERE professional_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load professional affiliations: %w", err)
	}
	professional.ClinicIDs = clinicIDs

	return &professional, nil
}

func (r *professionalRepository) Update(ctx context.Context, professional *model.Professional) error {
	query := `
		UPDATE professionals
		SET full_name = $1, registration_number = $2, council = $3,
			specialty = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	professional.UpdatedAt = time.Now()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		professional.FullName,
		professional.RegistrationNumber,
		professional.Council,
		professional.Specialty,
		professional.UpdatedAt,
		professional.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update professional: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("professional")
	}
	return nil
}

func (r *professionalRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE professionals
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete professional: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("professional")
	}
	return nil
}

func (r *professionalRepository) List(ctx context.Context) ([]*model.Professional, error) {
	query := `
		SELECT ` + professionalColumns + `
		FROM professionals
		WHERE deleted_at IS NULL
		ORDER BY full_name ASC
	`
	professionals := []*model.Professional{}
	err := r.ext(ctx).SelectContext(ctx, &professionals, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return professionals, nil
}

func (r *professionalRepository) AssignClinic(ctx context.Context, professionalID, clinicID uuid.UUID) error {
	query := `
		INSERT INTO professional_clinics (professional_id, clinic_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (professional_id, clinic_id) DO NOTHING
	`
	_, err := r.ext(ctx).ExecContext(ctx, query, professionalID, clinicID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to assign clinic: %w", err)
	}
	return nil
}

func (r *professionalRepository) RemoveClinic(ctx context.Context, professionalID, clinicID uuid.UUID) error {
	query := `
		DELETE FROM professional_clinics
		WHERE professional_id = $1 AND clinic_id = $2
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, professionalID, clinicID)
	if err != nil {
		return fmt.Errorf("failed to remove clinic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("affiliation")
	}
	return nil
}
