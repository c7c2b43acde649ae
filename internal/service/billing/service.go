package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/repository"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

// Service records financial transactions. A transaction linked to an
// appointment requires the appointment to be completed, and at most one
// transaction may exist per appointment; since completion is immutable
// in the scheduling engine, invoice generation per appointment id is
// idempotent.
type Service struct {
	repo         repository.BillingRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
}

func NewService(
	repo repository.BillingRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		appointments: appointments,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateTransactionRequest) (*model.FinancialTransaction, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}

	if req.AppointmentID != nil {
		apt, err := s.appointments.Get(ctx, *req.AppointmentID)
		if err != nil {
			return nil, err
		}
		if apt.Status != model.AppointmentStatusCompleted {
			return nil, apperrors.InvalidAssociation("only completed appointments can be invoiced")
		}

		if existing, err := s.repo.GetByAppointment(ctx, *req.AppointmentID); err == nil {
			// Idempotent: the invoice for this appointment already
			// exists, return it instead of duplicating.
			return existing, nil
		} else if !apperrors.IsNotFound(err) {
			return nil, err
		}
	}

	transaction := &model.FinancialTransaction{
		PatientID:       req.PatientID,
		AppointmentID:   req.AppointmentID,
		Type:            req.Type,
		Method:          req.Method,
		AmountCents:     req.AmountCents,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
	}
	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.FinancialTransaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, patientID *uuid.UUID) ([]*model.FinancialTransaction, error) {
	return s.repo.List(ctx, patientID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateTransactionRequest) (*model.FinancialTransaction, error) {
	transaction, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// The appointment link is immutable after creation; the patch type
	// deliberately has no appointment field.
	if req.Type != nil {
		transaction.Type = *req.Type
	}
	if req.Method != nil {
		transaction.Method = *req.Method
	}
	if req.AmountCents != nil {
		transaction.AmountCents = *req.AmountCents
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.TransactionDate != nil {
		transaction.TransactionDate = *req.TransactionDate
	}

	if err := s.repo.Update(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}
