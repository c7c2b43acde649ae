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

const evolutionColumns = `
	id, patient_id, professional_id, appointment_id, content, type,
	is_finalized, created_at, updated_at, deleted_at
`

func (r *evolutionRepository) Create(ctx context.Context, evolution *model.ClinicalEvolution) error {
	query := `
		INSERT INTO clinical_evolutions (
			id, patient_id, professional_id, appointment_id, content,
			type, is_finalized, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	evolution.ID = uuid.New()
	evolution.CreatedAt = time.Now()
	evolution.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		evolution.ID,
		evolution.PatientID,
		evolution.ProfessionalID,
		evolution.AppointmentID,
		evolution.Content,
		evolution.Type,
		evolution.IsFinalized,
		evolution.CreatedAt,
		evolution.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinical evolution: %w", err)
	}
	return nil
}

func (r *evolutionRepository) Get(ctx context.Context, id uuid.UUID) (*model.ClinicalEvolution, error) {
	query := `
		SELECT ` + evolutionColumns + `
		FROM clinical_evolutions
		WHERE id = $1 AND deleted_at IS NULL
	`
	var evolution model.ClinicalEvolution
	err := r.ext(ctx).GetContext(ctx, &evolution, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("clinical evolution")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinical evolution: %w", err)
	}
	return &evolution, nil
}

func (r *evolutionRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ClinicalEvolution, error) {
	query := `
		SELECT ` + evolutionColumns + `
		FROM clinical_evolutions
		WHERE appointment_id = $1 AND deleted_at IS NULL
	`
	var evolution model.ClinicalEvolution
	err := r.ext(ctx).GetContext(ctx, &evolution, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("clinical evolution")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinical evolution by appointment: %w", err)
	}
	return &evolution, nil
}

func (r *evolutionRepository) Update(ctx context.Context, evolution *model.ClinicalEvolution) error {
	query := `
		UPDATE clinical_evolutions
		SET content = $1, type = $2, is_finalized = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	evolution.UpdatedAt = time.Now()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		evolution.Content,
		evolution.Type,
		evolution.IsFinalized,
		evolution.UpdatedAt,
		evolution.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinical evolution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinical evolution")
	}
	return nil
}

func (r *evolutionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE clinical_evolutions
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete clinical evolution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("clinical evolution")
	}
	return nil
}

func (r *evolutionRepository) List(ctx context.Context, patientID *uuid.UUID) ([]*model.ClinicalEvolution, error) {
	query := `
		SELECT ` + evolutionColumns + `
		FROM clinical_evolutions
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}

	if patientID != nil {
		query += " AND patient_id = $1"
		args = append(args, *patientID)
	}

	query += " ORDER BY created_at DESC"

	evolutions := []*model.ClinicalEvolution{}
	err := r.ext(ctx).SelectContext(ctx, &evolutions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinical evolutions: %w", err)
	}
	return evolutions, nil
}
