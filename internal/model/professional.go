package model

import (
	"github.com/google/uuid"
)

type ProfessionalCouncil string

const (
	CouncilCRM     ProfessionalCouncil = "CRM"
	CouncilCRP     ProfessionalCouncil = "CRP"
	CouncilCOREN   ProfessionalCouncil = "COREN"
	CouncilCREFONO ProfessionalCouncil = "CREFONO"
	CouncilOther   ProfessionalCouncil = "OTHER"
)

// Professional is a practitioner affiliated with one or more clinics.
// ClinicIDs is the resolved affiliation set, loaded at read time and
// never stored on appointments; affiliation is re-checked on every
// booking validation.
type Professional struct {
	Base
	FullName           string              `db:"full_name" json:"full_name"`
	RegistrationNumber string              `db:"registration_number" json:"registration_number"`
	Council            ProfessionalCouncil `db:"council" json:"council"`
	Specialty          string              `db:"specialty" json:"specialty,omitempty"`
	ClinicIDs          []uuid.UUID         `db:"-" json:"clinic_ids"`
}

// AffiliatedWith reports whether the professional serves at the clinic.
func (p *Professional) AffiliatedWith(clinicID uuid.UUID) bool {
	for _, id := range p.ClinicIDs {
		if id == clinicID {
			return true
		}
	}
	return false
}

type CreateProfessionalRequest struct {
	FullName           string              `json:"full_name" binding:"required"`
	RegistrationNumber string              `json:"registration_number" binding:"required"`
	Council            ProfessionalCouncil `json:"council"`
	Specialty          string              `json:"specialty"`
	ClinicIDs          []uuid.UUID         `json:"clinic_ids"`
}

type UpdateProfessionalRequest struct {
	FullName           *string              `json:"full_name"`
	RegistrationNumber *string              `json:"registration_number"`
	Council            *ProfessionalCouncil `json:"council"`
	Specialty          *string              `json:"specialty"`
}
