package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		current model.AppointmentStatus
		next    model.AppointmentStatus
		wantErr bool
	}{
		{"scheduled to confirmed", model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed, false},
		{"scheduled to cancelled", model.AppointmentStatusScheduled, model.AppointmentStatusCancelled, false},
		{"scheduled to no_show", model.AppointmentStatusScheduled, model.AppointmentStatusNoShow, false},
		{"scheduled to completed", model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, false},
		{"confirmed to completed", model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, false},
		{"confirmed to cancelled", model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, false},
		{"confirmed to no_show", model.AppointmentStatusConfirmed, model.AppointmentStatusNoShow, false},
		{"confirmed back to scheduled", model.AppointmentStatusConfirmed, model.AppointmentStatusScheduled, true},
		{"completed to cancelled", model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, true},
		{"completed to no_show", model.AppointmentStatusCompleted, model.AppointmentStatusNoShow, true},
		{"completed to scheduled", model.AppointmentStatusCompleted, model.AppointmentStatusScheduled, true},
		{"cancelled to scheduled", model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, true},
		{"no_show to confirmed", model.AppointmentStatusNoShow, model.AppointmentStatusConfirmed, true},
		{"same status is a no-op", model.AppointmentStatusCompleted, model.AppointmentStatusCompleted, false},
		{"same non-terminal status is a no-op", model.AppointmentStatusScheduled, model.AppointmentStatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransition(tt.current, tt.next)
			if tt.wantErr {
				assert.True(t, apperrors.IsInvalidTransition(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransitionRejectsUnknownStatus(t *testing.T) {
	err := validateTransition(model.AppointmentStatusScheduled, model.AppointmentStatus("archived"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
}
