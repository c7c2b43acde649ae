package clinic

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/repository"
)

type Service struct {
	repo repository.ClinicRepository
}

func NewService(repo repository.ClinicRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{
		Name:     req.Name,
		TaxID:    req.TaxID,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Clinic, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.TaxID != nil {
		clinic.TaxID = *req.TaxID
	}
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}
