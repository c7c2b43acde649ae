package billing

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

type fakeBillingRepo struct {
	transactions map[uuid.UUID]*model.FinancialTransaction
}

func (r *fakeBillingRepo) Create(_ context.Context, tx *model.FinancialTransaction) error {
	tx.ID = uuid.New()
	r.transactions[tx.ID] = tx
	return nil
}

func (r *fakeBillingRepo) Get(_ context.Context, id uuid.UUID) (*model.FinancialTransaction, error) {
	tx, ok := r.transactions[id]
	if !ok || !tx.Active() {
		return nil, apperrors.NotFound("transaction")
	}
	return tx, nil
}

func (r *fakeBillingRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.FinancialTransaction, error) {
	for _, tx := range r.transactions {
		if tx.Active() && tx.AppointmentID != nil && *tx.AppointmentID == appointmentID {
			return tx, nil
		}
	}
	return nil, apperrors.NotFound("transaction")
}

func (r *fakeBillingRepo) Update(_ context.Context, tx *model.FinancialTransaction) error {
	r.transactions[tx.ID] = tx
	return nil
}

func (r *fakeBillingRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	r.transactions[id].DeletedAt = &now
	return nil
}

func (r *fakeBillingRepo) List(_ context.Context, patientID *uuid.UUID) ([]*model.FinancialTransaction, error) {
	var result []*model.FinancialTransaction
	for _, tx := range r.transactions {
		if !tx.Active() {
			continue
		}
		if patientID != nil && tx.PatientID != *patientID {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
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
	svc          *Service
	patientID    uuid.UUID
	appointments *fakeAppointmentRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	patient := &model.Patient{FullName: "Ana Souza"}
	require.NoError(t, patients.Create(context.Background(), patient))

	appointments := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	repo := &fakeBillingRepo{transactions: make(map[uuid.UUID]*model.FinancialTransaction)}

	return &fixture{
		svc:          NewService(repo, patients, appointments),
		patientID:    patient.ID,
		appointments: appointments,
	}
}

func (f *fixture) bookAppointment(t *testing.T, status model.AppointmentStatus) uuid.UUID {
	t.Helper()
	apt := &model.Appointment{PatientID: f.patientID, Status: status}
	require.NoError(t, f.appointments.Create(context.Background(), apt))
	return apt.ID
}

func TestCreateTransaction(t *testing.T) {
	t.Run("records an unlinked payment", func(t *testing.T) {
		f := newFixture(t)

		tx, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
			PatientID:       f.patientID,
			Type:            model.TransactionTypeIncome,
			Method:          model.PaymentMethodCash,
			AmountCents:     15000,
			TransactionDate: time.Now(),
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Nil(t, tx.AppointmentID)
	})

	t.Run("rejects unknown patient", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
			PatientID: uuid.New(),
		})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("invoices a completed appointment", func(t *testing.T) {
		f := newFixture(t)
		aptID := f.bookAppointment(t, model.AppointmentStatusCompleted)

		tx, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
			PatientID:     f.patientID,
			AppointmentID: &aptID,
			Type:          model.TransactionTypeIncome,
			Method:        model.PaymentMethodCard,
			AmountCents:   20000,
		})
		require.NoError(t, err)
		require.NotNil(t, tx.AppointmentID)
		assert.Equal(t, aptID, *tx.AppointmentID)
	})

	t.Run("refuses to invoice a non-completed appointment", func(t *testing.T) {
		f := newFixture(t)
		aptID := f.bookAppointment(t, model.AppointmentStatusScheduled)

		_, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
			PatientID:     f.patientID,
			AppointmentID: &aptID,
		})
		assert.True(t, apperrors.IsInvalidAssociation(err))
	})

	t.Run("invoicing the same appointment twice returns the original", func(t *testing.T) {
		f := newFixture(t)
		aptID := f.bookAppointment(t, model.AppointmentStatusCompleted)

		first, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
			PatientID:     f.patientID,
			AppointmentID: &aptID,
			AmountCents:   20000,
		})
		require.NoError(t, err)

		second, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
			PatientID:     f.patientID,
			AppointmentID: &aptID,
			AmountCents:   99999,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(20000), second.AmountCents)
	})
}

func TestUpdateTransactionKeepsAppointmentLink(t *testing.T) {
	f := newFixture(t)
	aptID := f.bookAppointment(t, model.AppointmentStatusCompleted)

	tx, err := f.svc.Create(context.Background(), &model.CreateTransactionRequest{
		PatientID:     f.patientID,
		AppointmentID: &aptID,
		AmountCents:   20000,
	})
	require.NoError(t, err)

	newAmount := int64(25000)
	updated, err := f.svc.Update(context.Background(), tx.ID, &model.UpdateTransactionRequest{
		AmountCents: &newAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, newAmount, updated.AmountCents)
	require.NotNil(t, updated.AppointmentID)
	assert.Equal(t, aptID, *updated.AppointmentID)
}
