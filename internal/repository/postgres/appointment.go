package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, professional_id, clinic_id,
	start_time, end_time, status, notes,
	created_at, updated_at, deleted_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, professional_id, clinic_id,
			start_time, end_time, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.ext(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.ProfessionalID,
		appointment.ClinicID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapConflict(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND deleted_at IS NULL
	`
	var appointment model.Appointment
	err := r.ext(ctx).GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, professional_id = $2, clinic_id = $3,
			start_time = $4, end_time = $5, status = $6, notes = $7,
			updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.ext(ctx).ExecContext(ctx, query,
		appointment.PatientID,
		appointment.ProfessionalID,
		appointment.ClinicID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", mapConflict(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}

func (r *appointmentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE appointments
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.ext(ctx).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
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
		if filters.ProfessionalID != uuid.Nil {
			query += fmt.Sprintf(" AND professional_id = $%d", argCount)
			args = append(args, filters.ProfessionalID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.From.IsZero() {
			query += fmt.Sprintf(" AND end_time > $%d", argCount)
			args = append(args, filters.From)
			argCount++
		}
		if !filters.To.IsZero() {
			query += fmt.Sprintf(" AND start_time < $%d", argCount)
			args = append(args, filters.To)
			argCount++
		}
	}

	query += " ORDER BY start_time ASC"

	appointments := []*model.Appointment{}
	err := r.ext(ctx).SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// FindOverlapping performs the half-open overlap scan: a row conflicts
// iff row.start < window.end AND row.end > window.start. Soft-deleted
// rows never count, and on update the appointment's own id is excluded.
func (r *appointmentRepository) FindOverlapping(ctx context.Context, scope model.ConflictScope, scopeID uuid.UUID, window model.TimeRange, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	scopeColumn := "professional_id"
	if scope == model.ScopePatient {
		scopeColumn = "patient_id"
	}

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ` + scopeColumn + ` = $1
		AND deleted_at IS NULL
		AND start_time < $2
		AND end_time > $3
	`
	args := []interface{}{scopeID, window.End, window.Start}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	appointments := []*model.Appointment{}
	err := r.ext(ctx).SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	return appointments, nil
}

const maxBookingTxAttempts = 3

// WithBookingTx wraps fn in a transaction holding advisory locks on the
// professional and patient scheduling scopes. Locks are taken in sorted
// key order so two bookings touching the same pair cannot deadlock.
// Serialization failures are retried a bounded number of times and then
// surfaced as Conflict.
func (r *appointmentRepository) WithBookingTx(ctx context.Context, professionalID, patientID uuid.UUID, fn func(ctx context.Context) error) error {
	keys := []string{
		"appointments:professional:" + professionalID.String(),
		"appointments:patient:" + patientID.String(),
	}
	sort.Strings(keys)

	var err error
	for attempt := 0; attempt < maxBookingTxAttempts; attempt++ {
		err = r.runBookingTx(ctx, keys, fn)
		if err == nil || !isConcurrencyConflict(err) {
			return err
		}
	}
	return mapConflict(err)
}

func (r *appointmentRepository) runBookingTx(ctx context.Context, lockKeys []string, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin booking transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	for _, key := range lockKeys {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}
	return nil
}
