package model

import (
	"github.com/google/uuid"
)

type EvolutionType string

const (
	EvolutionTypeSession    EvolutionType = "session"
	EvolutionTypeAssessment EvolutionType = "assessment"
	EvolutionTypeDischarge  EvolutionType = "discharge"
)

// ClinicalEvolution is a clinical note tied to a patient, the authoring
// professional and optionally a single appointment. Once finalized the
// record is immutable.
type ClinicalEvolution struct {
	Base
	PatientID      uuid.UUID     `db:"patient_id" json:"patient_id"`
	ProfessionalID uuid.UUID     `db:"professional_id" json:"professional_id"`
	AppointmentID  *uuid.UUID    `db:"appointment_id" json:"appointment_id,omitempty"`
	Content        string        `db:"content" json:"content"`
	Type           EvolutionType `db:"type" json:"type"`
	IsFinalized    bool          `db:"is_finalized" json:"is_finalized"`
}

type CreateEvolutionRequest struct {
	PatientID      uuid.UUID     `json:"patient_id" binding:"required"`
	ProfessionalID uuid.UUID     `json:"professional_id" binding:"required"`
	AppointmentID  *uuid.UUID    `json:"appointment_id"`
	Content        string        `json:"content"`
	Type           EvolutionType `json:"type"`
}

type UpdateEvolutionRequest struct {
	Content     *string        `json:"content"`
	Type        *EvolutionType `json:"type"`
	IsFinalized *bool          `json:"is_finalized"`
}
