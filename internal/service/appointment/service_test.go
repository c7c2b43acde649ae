package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlinx/clinic-api/internal/model"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
	"github.com/medlinx/clinic-api/pkg/logger"
)

// In-memory repositories backing the scheduling engine tests. They
// reproduce the persistence contract: soft-deleted rows are invisible,
// overlap scans use half-open windows, and the booking transaction is a
// plain passthrough since tests are single-threaded.

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	copied := *apt
	r.appointments[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok || !apt.Active() {
		return nil, apperrors.NotFound("appointment")
	}
	copied := *apt
	return &copied, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := r.appointments[apt.ID]; !ok {
		return apperrors.NotFound("appointment")
	}
	copied := *apt
	copied.UpdatedAt = time.Now()
	r.appointments[apt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	apt, ok := r.appointments[id]
	if !ok || !apt.Active() {
		return apperrors.NotFound("appointment")
	}
	now := time.Now()
	apt.DeletedAt = &now
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var result []*model.Appointment
	for _, apt := range r.appointments {
		if !apt.Active() {
			continue
		}
		if filters != nil && filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		copied := *apt
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeAppointmentRepo) FindOverlapping(_ context.Context, scope model.ConflictScope, scopeID uuid.UUID, window model.TimeRange, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	var result []*model.Appointment
	for _, apt := range r.appointments {
		if !apt.Active() {
			continue
		}
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		switch scope {
		case model.ScopeProfessional:
			if apt.ProfessionalID != scopeID {
				continue
			}
		case model.ScopePatient:
			if apt.PatientID != scopeID {
				continue
			}
		}
		if apt.Window().Overlaps(window) {
			copied := *apt
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) WithBookingTx(ctx context.Context, _, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
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
	if !ok || !p.Active() {
		return nil, apperrors.NotFound("patient")
	}
	return p, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	r.patients[id].DeletedAt = &now
	return nil
}

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
	if !ok || !p.Active() {
		return nil, apperrors.NotFound("professional")
	}
	return p, nil
}

func (r *fakeProfessionalRepo) Update(_ context.Context, p *model.Professional) error {
	r.professionals[p.ID] = p
	return nil
}

func (r *fakeProfessionalRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	r.professionals[id].DeletedAt = &now
	return nil
}

func (r *fakeProfessionalRepo) List(_ context.Context) ([]*model.Professional, error) {
	return nil, nil
}

func (r *fakeProfessionalRepo) AssignClinic(_ context.Context, professionalID, clinicID uuid.UUID) error {
	p := r.professionals[professionalID]
	p.ClinicIDs = append(p.ClinicIDs, clinicID)
	return nil
}

func (r *fakeProfessionalRepo) RemoveClinic(_ context.Context, professionalID, clinicID uuid.UUID) error {
	p := r.professionals[professionalID]
	for i, id := range p.ClinicIDs {
		if id == clinicID {
			p.ClinicIDs = append(p.ClinicIDs[:i], p.ClinicIDs[i+1:]...)
			break
		}
	}
	return nil
}

type fakeClinicRepo struct {
	clinics map[uuid.UUID]*model.Clinic
}

func (r *fakeClinicRepo) Create(_ context.Context, c *model.Clinic) error {
	c.ID = uuid.New()
	r.clinics[c.ID] = c
	return nil
}

func (r *fakeClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, ok := r.clinics[id]
	if !ok || !c.Active() {
		return nil, apperrors.NotFound("clinic")
	}
	return c, nil
}

func (r *fakeClinicRepo) Update(_ context.Context, c *model.Clinic) error {
	r.clinics[c.ID] = c
	return nil
}

func (r *fakeClinicRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	r.clinics[id].DeletedAt = &now
	return nil
}

func (r *fakeClinicRepo) List(_ context.Context) ([]*model.Clinic, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	r.events = append(r.events, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return r.events, nil
}

func (r *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// testClock is the fixed "now" every test runs against.
var testClock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc            *Service
	repo           *fakeAppointmentRepo
	outbox         *fakeOutboxRepo
	patientID      uuid.UUID
	otherPatientID uuid.UUID
	professionalID uuid.UUID
	otherProfID    uuid.UUID
	clinicID       uuid.UUID
	otherClinicID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clinics := &fakeClinicRepo{clinics: make(map[uuid.UUID]*model.Clinic)}
	clinic := &model.Clinic{Name: "Central", IsActive: true}
	require.NoError(t, clinics.Create(context.Background(), clinic))
	otherClinic := &model.Clinic{Name: "North", IsActive: true}
	require.NoError(t, clinics.Create(context.Background(), otherClinic))

	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patient := &model.Patient{FullName: "Ana Souza", ClinicID: clinic.ID}
	require.NoError(t, patients.Create(context.Background(), patient))
	otherPatient := &model.Patient{FullName: "Bruno Lima", ClinicID: clinic.ID}
	require.NoError(t, patients.Create(context.Background(), otherPatient))

	professionals := &fakeProfessionalRepo{professionals: make(map[uuid.UUID]*model.Professional)}
	prof := &model.Professional{FullName: "Dr. Carla Mendes", ClinicIDs: []uuid.UUID{clinic.ID}}
	require.NoError(t, professionals.Create(context.Background(), prof))
	otherProf := &model.Professional{FullName: "Dr. Diego Alves", ClinicIDs: []uuid.UUID{clinic.ID}}
	require.NoError(t, professionals.Create(context.Background(), otherProf))

	repo := newFakeAppointmentRepo()
	outbox := &fakeOutboxRepo{}

	svc := NewService(repo, patients, professionals, clinics, outbox, logger.NewLogger(nil), nil)
	svc.now = func() time.Time { return testClock }

	return &fixture{
		svc:            svc,
		repo:           repo,
		outbox:         outbox,
		patientID:      patient.ID,
		otherPatientID: otherPatient.ID,
		professionalID: prof.ID,
		otherProfID:    otherProf.ID,
		clinicID:       clinic.ID,
		otherClinicID:  otherClinic.ID,
	}
}

func (f *fixture) createRequest(start, end time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:      f.patientID,
		ProfessionalID: f.professionalID,
		ClinicID:       f.clinicID,
		StartTime:      start,
		EndTime:        end,
	}
}

func TestCreateAppointment(t *testing.T) {
	start := testClock.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	t.Run("books a valid future appointment", func(t *testing.T) {
		f := newFixture(t)

		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, apt.ID)
		assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.createRequest(end, start))
		assert.True(t, apperrors.IsInvalidTemporal(err))
	})

	t.Run("rejects zero-length window", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.createRequest(start, start))
		assert.True(t, apperrors.IsInvalidTemporal(err))
	})

	t.Run("rejects a start in the past", func(t *testing.T) {
		f := newFixture(t)

		past := testClock.Add(-time.Hour)
		_, err := f.svc.Create(context.Background(), f.createRequest(past, past.Add(time.Hour)))
		assert.True(t, apperrors.IsInvalidTemporal(err))
	})

	t.Run("rejects unknown patient", func(t *testing.T) {
		f := newFixture(t)

		req := f.createRequest(start, end)
		req.PatientID = uuid.New()
		_, err := f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("rejects unknown clinic", func(t *testing.T) {
		f := newFixture(t)

		req := f.createRequest(start, end)
		req.ClinicID = uuid.New()
		_, err := f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("rejects professional not affiliated with the clinic", func(t *testing.T) {
		f := newFixture(t)

		req := f.createRequest(start, end)
		req.ClinicID = f.otherClinicID
		_, err := f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsInvalidAssociation(err))
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		f := newFixture(t)

		req := f.createRequest(start, end)
		bogus := model.AppointmentStatus("pending")
		req.Status = &bogus
		_, err := f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))
	})
}

func TestCreateAppointment_Conflicts(t *testing.T) {
	start := testClock.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	t.Run("rejects overlap for the same professional", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		req := f.createRequest(start.Add(30*time.Minute), end.Add(30*time.Minute))
		req.PatientID = f.otherPatientID
		_, err = f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects overlap for the same patient with another professional", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		req := f.createRequest(start.Add(15*time.Minute), end.Add(15*time.Minute))
		req.ProfessionalID = f.otherProfID
		_, err = f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("allows back-to-back windows", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		// Ends exactly when the next begins; half-open windows never
		// touch.
		_, err = f.svc.Create(context.Background(), f.createRequest(end, end.Add(time.Hour)))
		assert.NoError(t, err)
	})

	t.Run("allows a fully contained window once the blocker is removed", func(t *testing.T) {
		f := newFixture(t)

		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		require.NoError(t, f.svc.Remove(context.Background(), apt.ID))

		_, err = f.svc.Create(context.Background(), f.createRequest(start, end))
		assert.NoError(t, err)
	})

	t.Run("rejects a containing window", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		req := f.createRequest(start.Add(-time.Hour), end.Add(time.Hour))
		req.PatientID = f.otherPatientID
		_, err = f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestUpdateAppointment(t *testing.T) {
	start := testClock.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	book := func(t *testing.T, f *fixture) *model.Appointment {
		t.Helper()
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)
		return apt
	}

	t.Run("moves an appointment within its own slot", func(t *testing.T) {
		f := newFixture(t)
		apt := book(t, f)

		// Shift by 30 minutes: overlaps the old window, which must not
		// count as a conflict with itself.
		newStart := start.Add(30 * time.Minute)
		newEnd := end.Add(30 * time.Minute)
		updated, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			StartTime: &newStart,
			EndTime:   &newEnd,
		})
		require.NoError(t, err)
		assert.True(t, updated.StartTime.Equal(newStart))
	})

	t.Run("revalidates against the new professional's schedule", func(t *testing.T) {
		f := newFixture(t)
		apt := book(t, f)

		// The other professional already has a booking in the window.
		blocker := f.createRequest(start, end)
		blocker.ProfessionalID = f.otherProfID
		blocker.PatientID = f.otherPatientID
		_, err := f.svc.Create(context.Background(), blocker)
		require.NoError(t, err)

		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			ProfessionalID: &f.otherProfID,
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects moving the window to the past", func(t *testing.T) {
		f := newFixture(t)
		apt := book(t, f)

		pastStart := testClock.Add(-2 * time.Hour)
		pastEnd := pastStart.Add(time.Hour)
		_, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			StartTime: &pastStart,
			EndTime:   &pastEnd,
		})
		assert.True(t, apperrors.IsInvalidTemporal(err))
	})

	t.Run("rejects a past move even alongside a status change", func(t *testing.T) {
		f := newFixture(t)
		apt := book(t, f)

		pastStart := testClock.Add(-2 * time.Hour)
		pastEnd := pastStart.Add(time.Hour)
		completed := model.AppointmentStatusCompleted
		_, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			StartTime: &pastStart,
			EndTime:   &pastEnd,
			Status:    &completed,
		})
		assert.True(t, apperrors.IsInvalidTemporal(err))
	})

	t.Run("allows a status-only change on a past appointment", func(t *testing.T) {
		f := newFixture(t)
		apt := book(t, f)

		// The appointment's time arrives and passes.
		f.svc.now = func() time.Time { return end.Add(time.Hour) }

		completed := model.AppointmentStatusCompleted
		updated, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &completed,
		})
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)
	})

	t.Run("returns not found for a soft-deleted appointment", func(t *testing.T) {
		f := newFixture(t)
		apt := book(t, f)

		require.NoError(t, f.svc.Remove(context.Background(), apt.ID))

		notes := "rebooked"
		_, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Notes: &notes,
		})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUpdateAppointment_StatusMachine(t *testing.T) {
	start := testClock.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	setStatus := func(t *testing.T, f *fixture, id uuid.UUID, status model.AppointmentStatus) {
		t.Helper()
		_, err := f.svc.Update(context.Background(), id, &model.UpdateAppointmentRequest{
			Status: &status,
		})
		require.NoError(t, err)
	}

	t.Run("completed cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)
		setStatus(t, f, apt.ID, model.AppointmentStatusCompleted)

		cancelled := model.AppointmentStatusCancelled
		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &cancelled,
		})
		assert.True(t, apperrors.IsInvalidTransition(err))
	})

	t.Run("completed cannot become no-show", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)
		setStatus(t, f, apt.ID, model.AppointmentStatusCompleted)

		noShow := model.AppointmentStatusNoShow
		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &noShow,
		})
		assert.True(t, apperrors.IsInvalidTransition(err))
	})

	t.Run("re-asserting a terminal status is a no-op", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)
		setStatus(t, f, apt.ID, model.AppointmentStatusCompleted)

		completed := model.AppointmentStatusCompleted
		updated, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &completed,
		})
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)
	})

	t.Run("cancelled cannot be rescheduled back", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)
		setStatus(t, f, apt.ID, model.AppointmentStatusCancelled)

		scheduled := model.AppointmentStatusScheduled
		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &scheduled,
		})
		assert.True(t, apperrors.IsInvalidTransition(err))
	})

	t.Run("scheduled through confirmed to completed", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		setStatus(t, f, apt.ID, model.AppointmentStatusConfirmed)
		setStatus(t, f, apt.ID, model.AppointmentStatusCompleted)

		got, err := f.svc.Get(context.Background(), apt.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCompleted, got.Status)
	})
}

func TestAppointmentOutboxEvents(t *testing.T) {
	start := testClock.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	t.Run("completion enqueues an event", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		completed := model.AppointmentStatusCompleted
		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &completed,
		})
		require.NoError(t, err)

		require.Len(t, f.outbox.events, 1)
		assert.Equal(t, model.EventAppointmentCompleted, f.outbox.events[0].EventType)
	})

	t.Run("cancellation enqueues an event", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		cancelled := model.AppointmentStatusCancelled
		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			Status: &cancelled,
		})
		require.NoError(t, err)

		require.Len(t, f.outbox.events, 1)
		assert.Equal(t, model.EventAppointmentCancelled, f.outbox.events[0].EventType)
	})

	t.Run("a plain reschedule enqueues nothing", func(t *testing.T) {
		f := newFixture(t)
		apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
		require.NoError(t, err)

		newStart := start.Add(2 * time.Hour)
		newEnd := newStart.Add(time.Hour)
		_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
			StartTime: &newStart,
			EndTime:   &newEnd,
		})
		require.NoError(t, err)

		assert.Empty(t, f.outbox.events)
	})
}

func TestRemoveAppointment(t *testing.T) {
	start := testClock.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	f := newFixture(t)
	apt, err := f.svc.Create(context.Background(), f.createRequest(start, end))
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(context.Background(), apt.ID))

	_, err = f.svc.Get(context.Background(), apt.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = f.svc.Remove(context.Background(), apt.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
