package professional

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/repository"
)

type Service struct {
	repo    repository.ProfessionalRepository
	clinics repository.ClinicRepository
}

func NewService(repo repository.ProfessionalRepository, clinics repository.ClinicRepository) *Service {
	return &Service{repo: repo, clinics: clinics}
}

func (s *Service) Create(ctx context.Context, req *model.CreateProfessionalRequest) (*model.Professional, error) {
	for _, clinicID := range req.ClinicIDs {
		if _, err := s.clinics.Get(ctx, clinicID); err != nil {
			return nil, err
		}
	}

	council := req.Council
	if council == "" {
		council = model.CouncilOther
	}

	professional := &model.Professional{
		FullName:           req.FullName,
		RegistrationNumber: req.RegistrationNumber,
		Council:            council,
		Specialty:          req.Specialty,
		ClinicIDs:          req.ClinicIDs,
	}
	if err := s.repo.Create(ctx, professional); err != nil {
		return nil, err
	}
	return professional, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Professional, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Professional, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateProfessionalRequest) (*model.Professional, error) {
	professional, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		professional.FullName = *req.FullName
	}
	if req.RegistrationNumber != nil {
		professional.RegistrationNumber = *req.RegistrationNumber
	}
	if req.Council != nil {
		professional.Council = *req.Council
	}
	if req.Specialty != nil {
		professional.Specialty = *req.Specialty
	}

	if err := s.repo.Update(ctx, professional); err != nil {
		return nil, err
	}
	return professional, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

// AssignClinic adds an affiliation. Appointments never cache this set:
// the scheduling engine re-reads it on every validation.
func (s *Service) AssignClinic(ctx context.Context, professionalID, clinicID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, professionalID); err != nil {
		return err
	}
	if _, err := s.clinics.Get(ctx, clinicID); err != nil {
		return err
	}
	return s.repo.AssignClinic(ctx, professionalID, clinicID)
}

func (s *Service) RemoveClinic(ctx context.Context, professionalID, clinicID uuid.UUID) error {
	return s.repo.RemoveClinic(ctx, professionalID, clinicID)
}
