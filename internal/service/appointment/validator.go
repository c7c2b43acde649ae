package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

// bookingSnapshots holds the entities resolved during validation. They
// are read-phase copies, immutable for the rest of the call; the caller
// attaches the ids to the appointment being written.
type bookingSnapshots struct {
	Patient      *model.Patient
	Professional *model.Professional
	Clinic       *model.Clinic
}

// validateBooking runs the admission pipeline for a proposed booking
// window. Steps run in a fixed order and short-circuit on the first
// failure:
//
//  1. window sanity (end strictly after start)
//  2. retroactive guard, creates only (excludeID nil)
//  3. existence of patient, professional and clinic
//  4. professional/clinic affiliation
//  5. professional-scoped overlap scan
//  6. patient-scoped overlap scan
//
// excludeID carries the appointment's own id on update so it does not
// conflict with itself.
func (s *Service) validateBooking(ctx context.Context, patientID, professionalID, clinicID uuid.UUID, window model.TimeRange, excludeID *uuid.UUID) (*bookingSnapshots, error) {
	if !window.Valid() {
		return nil, apperrors.InvalidTemporal("end time must be after start time")
	}

	if excludeID == nil && window.Start.Before(s.now()) {
		return nil, apperrors.InvalidTemporal("appointments cannot be created in the past")
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	professional, err := s.professionals.Get(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	// Affiliation is re-evaluated on every call; it is never cached on
	// the appointment.
	if !professional.AffiliatedWith(clinicID) {
		return nil, apperrors.InvalidAssociation("the professional is not affiliated with the given clinic")
	}

	conflicts, err := s.repo.FindOverlapping(ctx, model.ScopeProfessional, professionalID, window, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.countConflict(model.ScopeProfessional)
		return nil, apperrors.Conflict("the professional already has an appointment in this period")
	}

	conflicts, err = s.repo.FindOverlapping(ctx, model.ScopePatient, patientID, window, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.countConflict(model.ScopePatient)
		return nil, apperrors.Conflict("the patient already has an appointment in this period")
	}

	return &bookingSnapshots{
		Patient:      patient,
		Professional: professional,
		Clinic:       clinic,
	}, nil
}

func (s *Service) countConflict(scope model.ConflictScope) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingConflicts.WithLabelValues(string(scope)).Inc()
}
