package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUndisclosed Gender = "undisclosed"
)

type Patient struct {
	Base
	FullName  string     `db:"full_name" json:"full_name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    Gender     `db:"gender" json:"gender"`
	Document  string     `db:"document" json:"document,omitempty"`
	ClinicID  uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	// ResponsibleID points at another patient acting as guardian, for
	// minors. The relation is owned by the patient module.
	ResponsibleID *uuid.UUID `db:"responsible_id" json:"responsible_id,omitempty"`
}

type CreatePatientRequest struct {
	FullName      string     `json:"full_name" binding:"required"`
	BirthDate     *time.Time `json:"birth_date"`
	Gender        Gender     `json:"gender"`
	Document      string     `json:"document"`
	ClinicID      uuid.UUID  `json:"clinic_id" binding:"required"`
	ResponsibleID *uuid.UUID `json:"responsible_id"`
}

type UpdatePatientRequest struct {
	FullName      *string    `json:"full_name"`
	BirthDate     *time.Time `json:"birth_date"`
	Gender        *Gender    `json:"gender"`
	Document      *string    `json:"document"`
	ClinicID      *uuid.UUID `json:"clinic_id"`
	ResponsibleID *uuid.UUID `json:"responsible_id"`
}

type PatientFilters struct {
	ClinicID   uuid.UUID
	SearchTerm string
}
