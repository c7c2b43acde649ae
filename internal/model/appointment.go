package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Valid reports whether s is one of the known appointment statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed, other
// than re-asserting the same status.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	ProfessionalID uuid.UUID         `db:"professional_id" json:"professional_id"`
	ClinicID       uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	StartTime      time.Time         `db:"start_time" json:"start_time"`
	EndTime        time.Time         `db:"end_time" json:"end_time"`
	Status         AppointmentStatus `db:"status" json:"status"`
	Notes          string            `db:"notes" json:"notes,omitempty"`
}

// Window returns the appointment's booking window.
func (a *Appointment) Window() TimeRange {
	return TimeRange{Start: a.StartTime, End: a.EndTime}
}

type CreateAppointmentRequest struct {
	PatientID      uuid.UUID          `json:"patient_id" binding:"required"`
	ProfessionalID uuid.UUID          `json:"professional_id" binding:"required"`
	ClinicID       uuid.UUID          `json:"clinic_id" binding:"required"`
	StartTime      time.Time          `json:"start_time" binding:"required"`
	EndTime        time.Time          `json:"end_time" binding:"required"`
	Status         *AppointmentStatus `json:"status"`
	Notes          string             `json:"notes"`
}

// UpdateAppointmentRequest is a patch: nil means "keep the current
// value". It is resolved into a complete next-state before any
// validation runs.
type UpdateAppointmentRequest struct {
	PatientID      *uuid.UUID         `json:"patient_id"`
	ProfessionalID *uuid.UUID         `json:"professional_id"`
	ClinicID       *uuid.UUID         `json:"clinic_id"`
	StartTime      *time.Time         `json:"start_time"`
	EndTime        *time.Time         `json:"end_time"`
	Status         *AppointmentStatus `json:"status"`
	Notes          *string            `json:"notes"`
}

// Resolve materializes the fully-resolved next state of current under
// the patch. The returned appointment is a copy; current is untouched.
func (r *UpdateAppointmentRequest) Resolve(current *Appointment) *Appointment {
	next := *current
	if r.PatientID != nil {
		next.PatientID = *r.PatientID
	}
	if r.ProfessionalID != nil {
		next.ProfessionalID = *r.ProfessionalID
	}
	if r.ClinicID != nil {
		next.ClinicID = *r.ClinicID
	}
	if r.StartTime != nil {
		next.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		next.EndTime = *r.EndTime
	}
	if r.Status != nil {
		next.Status = *r.Status
	}
	if r.Notes != nil {
		next.Notes = *r.Notes
	}
	return &next
}

// TimesChanged reports whether the resolved next state moves the
// booking window relative to current.
func (r *UpdateAppointmentRequest) TimesChanged(current *Appointment) bool {
	if r.StartTime != nil && !r.StartTime.Equal(current.StartTime) {
		return true
	}
	if r.EndTime != nil && !r.EndTime.Equal(current.EndTime) {
		return true
	}
	return false
}

type AppointmentFilters struct {
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	PatientID      uuid.UUID
	Status         AppointmentStatus
	From           time.Time
	To             time.Time
}

// ConflictScope is the axis against which overlap is checked. Each
// scope is its own uniqueness domain.
type ConflictScope string

const (
	ScopeProfessional ConflictScope = "professional"
	ScopePatient      ConflictScope = "patient"
)
