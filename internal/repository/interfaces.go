package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the persistence boundary of the
	// scheduling engine. All queries ignore soft-deleted rows.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// FindOverlapping returns active appointments in the given scope
		// whose half-open window intersects the given one, excluding
		// excludeID when non-nil.
		FindOverlapping(ctx context.Context, scope model.ConflictScope, scopeID uuid.UUID, window model.TimeRange, excludeID *uuid.UUID) ([]*model.Appointment, error)
		// WithBookingTx runs fn inside a transaction that holds
		// advisory locks on the professional's and patient's scheduling
		// scopes, so a concurrent validate-then-write for either scope
		// cannot interleave. Repository calls made with the ctx passed
		// to fn run in that transaction. A lock or serialization
		// failure surfaces as a Conflict error.
		WithBookingTx(ctx context.Context, professionalID, patientID uuid.UUID, fn func(ctx context.Context) error) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	// ProfessionalRepository resolves professionals together with their
	// affiliated-clinic set.
	ProfessionalRepository interface {
		Create(ctx context.Context, professional *model.Professional) error
		Get(ctx context.Context, id uuid.UUID) (*model.Professional, error)
		Update(ctx context.Context, professional *model.Professional) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Professional, error)
		AssignClinic(ctx context.Context, professionalID, clinicID uuid.UUID) error
		RemoveClinic(ctx context.Context, professionalID, clinicID uuid.UUID) error
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Clinic, error)
	}

	EvolutionRepository interface {
		Create(ctx context.Context, evolution *model.ClinicalEvolution) error
		Get(ctx context.Context, id uuid.UUID) (*model.ClinicalEvolution, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ClinicalEvolution, error)
		Update(ctx context.Context, evolution *model.ClinicalEvolution) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, patientID *uuid.UUID) ([]*model.ClinicalEvolution, error)
	}

	BillingRepository interface {
		Create(ctx context.Context, tx *model.FinancialTransaction) error
		Get(ctx context.Context, id uuid.UUID) (*model.FinancialTransaction, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.FinancialTransaction, error)
		Update(ctx context.Context, tx *model.FinancialTransaction) error
		SoftDelete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, patientID *uuid.UUID) ([]*model.FinancialTransaction, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
