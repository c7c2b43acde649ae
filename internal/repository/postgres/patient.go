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

const patientColumns = `
	id, full_name, birth_date, gender, document, clinic_id,
	responsible_id, created_at, updated_at, deleted_at
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, full_name, birth_date, gender, document, clinic_id,
			responsible_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		patient.ID,
		patient.FullName,
		patient.BirthDate,
		patient.Gender,
		patient.Document,
		patient.ClinicID,
		patient.ResponsibleID,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`
	var patient model.Patient
	err := r.ext(ctx).GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET full_name = $1, birth_date = $2, gender = $3, document = $4,
			clinic_id = $5, responsible_id = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		patient.FullName,
		patient.BirthDate,
		patient.Gender,
		patient.Document,
		patient.ClinicID,
		patient.ResponsibleID,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}
	return nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE patients
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.ClinicID != uuid.Nil {
			query += fmt.Sprintf(" AND clinic_id = $%d", argCount)
			args = append(args, filters.ClinicID)
			argCount++
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND full_name ILIKE $%d", argCount)
			args = append(args, "%"+filters.SearchTerm+"%")
			argCount++
		}
	}

	query += " ORDER BY full_name ASC"

	patients := []*model.Patient{}
	err := r.ext(ctx).SelectContext(ctx, &patients, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
