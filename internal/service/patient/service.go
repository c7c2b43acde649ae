package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/repository"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

type Service struct {
	repo    repository.PatientRepository
	clinics repository.ClinicRepository
}

func NewService(repo repository.PatientRepository, clinics repository.ClinicRepository) *Service {
	return &Service{repo: repo, clinics: clinics}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if _, err := s.clinics.Get(ctx, req.ClinicID); err != nil {
		return nil, err
	}

	// A responsible party must be an existing patient; the relation is
	// used for minors and lives entirely in this module.
	if req.ResponsibleID != nil {
		if *req.ResponsibleID == uuid.Nil {
			return nil, apperrors.BadRequest("invalid responsible patient id", nil)
		}
		if _, err := s.repo.Get(ctx, *req.ResponsibleID); err != nil {
			return nil, err
		}
	}

	gender := req.Gender
	if gender == "" {
		gender = model.GenderUndisclosed
	}

	patient := &model.Patient{
		FullName:      req.FullName,
		BirthDate:     req.BirthDate,
		Gender:        gender,
		Document:      req.Document,
		ClinicID:      req.ClinicID,
		ResponsibleID: req.ResponsibleID,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.BirthDate != nil {
		patient.BirthDate = req.BirthDate
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Document != nil {
		patient.Document = *req.Document
	}
	if req.ClinicID != nil {
		if _, err := s.clinics.Get(ctx, *req.ClinicID); err != nil {
			return nil, err
		}
		patient.ClinicID = *req.ClinicID
	}
	if req.ResponsibleID != nil {
		if *req.ResponsibleID == id {
			return nil, apperrors.BadRequest("a patient cannot be their own responsible party", nil)
		}
		if _, err := s.repo.Get(ctx, *req.ResponsibleID); err != nil {
			return nil, err
		}
		patient.ResponsibleID = req.ResponsibleID
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}
