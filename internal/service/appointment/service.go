package appointment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/repository"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
	"github.com/medlinx/clinic-api/pkg/logger"
	"github.com/medlinx/clinic-api/pkg/metrics"
)

// Service is the scheduling engine: it decides whether a proposed or
// modified appointment may be admitted, and owns the appointment
// lifecycle (create, update, soft delete).
type Service struct {
	repo          repository.AppointmentRepository
	patients      repository.PatientRepository
	professionals repository.ProfessionalRepository
	clinics       repository.ClinicRepository
	outbox        repository.OutboxRepository
	logger        *logger.Logger
	metrics       *metrics.Metrics

	// now is injectable for tests; the engine never caches time across
	// calls.
	now func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	professionals repository.ProfessionalRepository,
	clinics repository.ClinicRepository,
	outbox repository.OutboxRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		professionals: professionals,
		clinics:       clinics,
		outbox:        outbox,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// countBooking records the outcome of a booking attempt. The metrics
// handle is optional so unit tests can construct the service bare.
func (s *Service) countBooking(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "rejected"
		if apperrors.IsConflict(err) {
			outcome = "conflict"
		}
	}
	s.metrics.BookingsTotal.WithLabelValues(operation, outcome).Inc()
}

// Create books a new appointment. The whole validate-then-write
// sequence runs inside one booking transaction so a concurrent create
// or update for the same professional or patient cannot slip an
// overlapping window past the conflict scan.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	status := model.AppointmentStatusScheduled
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.BadRequest("invalid appointment status", nil)
		}
		status = *req.Status
	}

	window := model.TimeRange{Start: req.StartTime, End: req.EndTime}

	var created *model.Appointment
	err := s.repo.WithBookingTx(ctx, req.ProfessionalID, req.PatientID, func(txCtx context.Context) error {
		if _, err := s.validateBooking(txCtx, req.PatientID, req.ProfessionalID, req.ClinicID, window, nil); err != nil {
			return err
		}

		apt := &model.Appointment{
			PatientID:      req.PatientID,
			ProfessionalID: req.ProfessionalID,
			ClinicID:       req.ClinicID,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Status:         status,
			Notes:          req.Notes,
		}
		if err := s.repo.Create(txCtx, apt); err != nil {
			return err
		}

		if apt.Status == model.AppointmentStatusCompleted {
			if err := s.enqueueStatusEvent(txCtx, apt, model.EventAppointmentCompleted); err != nil {
				return err
			}
		}

		created = apt
		return nil
	})
	s.countBooking("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		"id", created.ID.String(),
		"professional_id", created.ProfessionalID.String(),
		"patient_id", created.PatientID.String())
	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// Update applies a patch to an existing appointment. The patch is
// resolved into a complete next-state, which is re-validated against
// current invariants exactly like a new booking, excluding the
// appointment itself from the conflict scans. Conflict and affiliation
// checks run against the next-state participants, so moving an
// appointment to another professional validates the new professional's
// schedule.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	// Pre-read to learn the lock scope; everything is re-read and
	// re-checked inside the transaction.
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lockState := req.Resolve(current)

	var updated *model.Appointment
	err = s.repo.WithBookingTx(ctx, lockState.ProfessionalID, lockState.PatientID, func(txCtx context.Context) error {
		current, err := s.repo.Get(txCtx, id)
		if err != nil {
			return err
		}

		next := req.Resolve(current)
		if next.ProfessionalID != lockState.ProfessionalID || next.PatientID != lockState.PatientID {
			// A concurrent update moved the appointment to another
			// scope than the one we locked.
			return apperrors.Conflict("the appointment was modified concurrently, please retry")
		}

		if err := validateTransition(current.Status, next.Status); err != nil {
			return err
		}

		// A status-only change to a past appointment is an
		// administrative closeout and is allowed; rewriting the window
		// itself to a past instant is not, even when a status change
		// accompanies it.
		if req.TimesChanged(current) && next.StartTime.Before(s.now()) {
			return apperrors.InvalidTemporal("appointments cannot be moved to a past time")
		}

		excludeID := id
		if _, err := s.validateBooking(txCtx, next.PatientID, next.ProfessionalID, next.ClinicID, next.Window(), &excludeID); err != nil {
			return err
		}

		if err := s.repo.Update(txCtx, next); err != nil {
			return err
		}

		if current.Status != next.Status {
			switch next.Status {
			case model.AppointmentStatusCompleted:
				if err := s.enqueueStatusEvent(txCtx, next, model.EventAppointmentCompleted); err != nil {
					return err
				}
			case model.AppointmentStatusCancelled:
				if err := s.enqueueStatusEvent(txCtx, next, model.EventAppointmentCancelled); err != nil {
					return err
				}
			}
		}

		updated = next
		return nil
	})
	s.countBooking("update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment updated", "id", id.String(), "status", string(updated.Status))
	return updated, nil
}

// Remove soft-deletes the appointment. The row persists for historical
// and billing traceability but is excluded from every existence and
// conflict query from this point on.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment removed", "id", id.String())
	return nil
}

// enqueueStatusEvent writes the outbox row inside the booking
// transaction; publishing happens later in the outbox worker, never
// while the booking lock is held.
func (s *Service) enqueueStatusEvent(ctx context.Context, apt *model.Appointment, eventType string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"appointment_id":  apt.ID,
		"patient_id":      apt.PatientID,
		"professional_id": apt.ProfessionalID,
		"clinic_id":       apt.ClinicID,
		"start_time":      apt.StartTime,
		"end_time":        apt.EndTime,
	})
	if err != nil {
		return err
	}
	return s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	})
}
