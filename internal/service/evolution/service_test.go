package evolution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

type fakeEvolutionRepo struct {
	evolutions map[uuid.UUID]*model.ClinicalEvolution
}

func (r *fakeEvolutionRepo) Create(_ context.Context, ev *model.ClinicalEvolution) error {
	ev.ID = uuid.New()
	r.evolutions[ev.ID] = ev
	return nil
}

func (r *fakeEvolutionRepo) Get(_ context.Context, id uuid.UUID) (*model.ClinicalEvolution, error) {
	ev, ok := r.evolutions[id]
	if !ok || !ev.Active() {
		return nil, apperrors.NotFound("clinical evolution")
	}
	return ev, nil
}

func (r *fakeEvolutionRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.ClinicalEvolution, error) {
	for _, ev := range r.evolutions {
		if ev.Active() && ev.AppointmentID != nil && *ev.AppointmentID == appointmentID {
			return ev, nil
		}
	}
	return nil, apperrors.NotFound("clinical evolution")
}

func (r *fakeEvolutionRepo) Update(_ context.Context, ev *model.ClinicalEvolution) error {
	r.evolutions[ev.ID] = ev
	return nil
}

func (r *fakeEvolutionRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	r.evolutions[id].DeletedAt = &now
	return nil
}

func (r *fakeEvolutionRepo) List(_ context.Context, _ *uuid.UUID) ([]*model.ClinicalEvolution, error) {
	return nil, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	p.ID = uuid.New()
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient")
	}
	return p, nil
}

func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient) error { return nil }
func (r *fakePatientRepo) SoftDelete(_ context.Context, _ uuid.UUID) error  { return nil }
func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

type fakeProfessionalRepo struct {
	professionals map[uuid.UUID]*model.Professional
}

func (r *fakeProfessionalRepo) Create(_ context.Context, p *model.Professional) error {
	p.ID = uuid.New()
	r.professionals[p.ID] = p
	return nil
}

func (r *fakeProfessionalRepo) Get(_ context.Context, id uuid.UUID) (*model.Professional, error) {
	p, ok := r.professionals[id]
	if !ok {
		return nil, apperrors.NotFound("professional")
	}
	return p, nil
}

func (r *fakeProfessionalRepo) Update(_ context.Context, _ *model.Professional) error { return nil }
func (r *fakeProfessionalRepo) SoftDelete(_ context.Context, _ uuid.UUID) error       { return nil }
func (r *fakeProfessionalRepo) List(_ context.Context) ([]*model.Professional, error) {
	return nil, nil
}
func (r *fakeProfessionalRepo) AssignClinic(_ context.Context, _, _ uuid.UUID) error { return nil }
func (r *fakeProfessionalRepo) RemoveClinic(_ context.Context, _, _ uuid.UUID) error { return nil }

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	r.appointments[apt.ID] = apt
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment")
	}
	return apt, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) SoftDelete(_ context.Context, _ uuid.UUID) error      { return nil }
func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) FindOverlapping(_ context.Context, _ model.ConflictScope, _ uuid.UUID, _ model.TimeRange, _ *uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) WithBookingTx(ctx context.Context, _, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc            *Service
	patientID      uuid.UUID
	professionalID uuid.UUID
	appointments   *fakeAppointmentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patient := &model.Patient{FullName: "Ana Souza"}
	require.NoError(t, patients.Create(context.Background(), patient))

	professionals := &fakeProfessionalRepo{professionals: make(map[uuid.UUID]*model.Professional)}
	prof := &model.Professional{FullName: "Dr. Carla Mendes"}
	require.NoError(t, professionals.Create(context.Background(), prof))

	appointments := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	repo := &fakeEvolutionRepo{evolutions: make(map[uuid.UUID]*model.ClinicalEvolution)}

	return &fixture{
		svc:            NewService(repo, patients, professionals, appointments),
		patientID:      patient.ID,
		professionalID: prof.ID,
		appointments:   appointments,
	}
}

func (f *fixture) bookAppointment(t *testing.T, patientID, professionalID uuid.UUID) uuid.UUID {
	t.Helper()
	apt := &model.Appointment{
		PatientID:      patientID,
		ProfessionalID: professionalID,
		Status:         model.AppointmentStatusCompleted,
	}
	require.NoError(t, f.appointments.Create(context.Background(), apt))
	return apt.ID
}

func TestCreateEvolution(t *testing.T) {
	t.Run("creates an open session note", func(t *testing.T) {
		f := newFixture(t)

		ev, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			Content:        "initial assessment",
		})
		require.NoError(t, err)
		assert.Equal(t, model.EvolutionTypeSession, ev.Type)
		assert.False(t, ev.IsFinalized)
	})

	t.Run("links to a matching appointment", func(t *testing.T) {
		f := newFixture(t)
		aptID := f.bookAppointment(t, f.patientID, f.professionalID)

		ev, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			AppointmentID:  &aptID,
			Content:        "session notes",
		})
		require.NoError(t, err)
		require.NotNil(t, ev.AppointmentID)
		assert.Equal(t, aptID, *ev.AppointmentID)
	})

	t.Run("rejects an appointment belonging to another patient", func(t *testing.T) {
		f := newFixture(t)
		aptID := f.bookAppointment(t, uuid.New(), f.professionalID)

		_, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			AppointmentID:  &aptID,
		})
		assert.True(t, apperrors.IsInvalidAssociation(err))
	})

	t.Run("rejects a second evolution for the same appointment", func(t *testing.T) {
		f := newFixture(t)
		aptID := f.bookAppointment(t, f.patientID, f.professionalID)

		_, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			AppointmentID:  &aptID,
			Content:        "first",
		})
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			AppointmentID:  &aptID,
			Content:        "second",
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects unknown professional", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: uuid.New(),
		})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUpdateEvolution(t *testing.T) {
	create := func(t *testing.T, f *fixture) *model.ClinicalEvolution {
		t.Helper()
		ev, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
			Content:        "draft",
		})
		require.NoError(t, err)
		return ev
	}

	t.Run("edits an open record", func(t *testing.T) {
		f := newFixture(t)
		ev := create(t, f)

		content := "revised draft"
		updated, err := f.svc.Update(context.Background(), ev.ID, &model.UpdateEvolutionRequest{
			Content: &content,
		})
		require.NoError(t, err)
		assert.Equal(t, content, updated.Content)
	})

	t.Run("finalizes a record with content", func(t *testing.T) {
		f := newFixture(t)
		ev := create(t, f)

		finalize := true
		updated, err := f.svc.Update(context.Background(), ev.ID, &model.UpdateEvolutionRequest{
			IsFinalized: &finalize,
		})
		require.NoError(t, err)
		assert.True(t, updated.IsFinalized)
	})

	t.Run("refuses to finalize an empty record", func(t *testing.T) {
		f := newFixture(t)
		ev, err := f.svc.Create(context.Background(), &model.CreateEvolutionRequest{
			PatientID:      f.patientID,
			ProfessionalID: f.professionalID,
		})
		require.NoError(t, err)

		finalize := true
		_, err = f.svc.Update(context.Background(), ev.ID, &model.UpdateEvolutionRequest{
			IsFinalized: &finalize,
		})
		assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
	})

	t.Run("a finalized record is immutable", func(t *testing.T) {
		f := newFixture(t)
		ev := create(t, f)

		finalize := true
		_, err := f.svc.Update(context.Background(), ev.ID, &model.UpdateEvolutionRequest{
			IsFinalized: &finalize,
		})
		require.NoError(t, err)

		content := "late edit"
		_, err = f.svc.Update(context.Background(), ev.ID, &model.UpdateEvolutionRequest{
			Content: &content,
		})
		assert.True(t, apperrors.IsInvalidTransition(err))
	})
}
