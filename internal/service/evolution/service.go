package evolution

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/repository"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

// Service manages clinical evolution records. Evolutions are created
// open, may be edited until finalized, and are immutable afterwards.
type Service struct {
	repo          repository.EvolutionRepository
	patients      repository.PatientRepository
	professionals repository.ProfessionalRepository
	appointments  repository.AppointmentRepository
}

func NewService(
	repo repository.EvolutionRepository,
	patients repository.PatientRepository,
	professionals repository.ProfessionalRepository,
	appointments repository.AppointmentRepository,
) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		professionals: professionals,
		appointments:  appointments,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateEvolutionRequest) (*model.ClinicalEvolution, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.professionals.Get(ctx, req.ProfessionalID); err != nil {
		return nil, err
	}

	if req.AppointmentID != nil {
		apt, err := s.appointments.Get(ctx, *req.AppointmentID)
		if err != nil {
			return nil, err
		}

		// One evolution per appointment.
		if _, err := s.repo.GetByAppointment(ctx, *req.AppointmentID); err == nil {
			return nil, apperrors.Conflict("this appointment already has a clinical evolution")
		} else if !apperrors.IsNotFound(err) {
			return nil, err
		}

		if apt.PatientID != req.PatientID || apt.ProfessionalID != req.ProfessionalID {
			return nil, apperrors.InvalidAssociation("the appointment does not match the given patient or professional")
		}
	}

	evolutionType := req.Type
	if evolutionType == "" {
		evolutionType = model.EvolutionTypeSession
	}

	evolution := &model.ClinicalEvolution{
		PatientID:      req.PatientID,
		ProfessionalID: req.ProfessionalID,
		AppointmentID:  req.AppointmentID,
		Content:        req.Content,
		Type:           evolutionType,
		IsFinalized:    false,
	}
	if err := s.repo.Create(ctx, evolution); err != nil {
		return nil, err
	}
	return evolution, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ClinicalEvolution, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, patientID *uuid.UUID) ([]*model.ClinicalEvolution, error) {
	return s.repo.List(ctx, patientID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateEvolutionRequest) (*model.ClinicalEvolution, error) {
	evolution, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Finalized records are immutable.
	if evolution.IsFinalized {
		return nil, apperrors.InvalidTransition("a finalized clinical evolution cannot be modified")
	}

	if req.Content != nil {
		evolution.Content = *req.Content
	}
	if req.Type != nil {
		evolution.Type = *req.Type
	}
	if req.IsFinalized != nil && *req.IsFinalized {
		if evolution.Content == "" {
			return nil, apperrors.BadRequest("cannot finalize an evolution without content", nil)
		}
		evolution.IsFinalized = true
	}

	if err := s.repo.Update(ctx, evolution); err != nil {
		return nil, err
	}
	return evolution, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}
