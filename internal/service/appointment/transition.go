package appointment

import (
	"fmt"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

var allowedTransitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusScheduled: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
		model.AppointmentStatusCompleted,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	},
	// Terminal states: only the no-op re-assertion is allowed.
	model.AppointmentStatusCompleted: {},
	model.AppointmentStatusCancelled: {},
	model.AppointmentStatusNoShow:    {},
}

// validateTransition enforces the status state machine. Re-asserting
// the current status is always a no-op. Once completed, an appointment
// can never move to cancelled or no_show; billing relies on completion
// being immutable.
func validateTransition(current, next model.AppointmentStatus) error {
	if !next.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("invalid appointment status %q", next), nil)
	}
	if next == current {
		return nil
	}

	if current == model.AppointmentStatusCompleted &&
		(next == model.AppointmentStatusCancelled || next == model.AppointmentStatusNoShow) {
		return apperrors.InvalidTransition("a completed appointment cannot be cancelled or marked as no-show")
	}

	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return nil
		}
	}
	return apperrors.InvalidTransition(fmt.Sprintf("cannot transition appointment from %s to %s", current, next))
}
