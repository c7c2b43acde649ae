package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/medlinx/clinic-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type patientRepository struct {
	BaseRepository
}

type professionalRepository struct {
	BaseRepository
}

type clinicRepository struct {
	BaseRepository
}

type evolutionRepository struct {
	BaseRepository
}

type billingRepository struct {
	BaseRepository
}

type outboxRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func NewProfessionalRepository(db *sqlx.DB) repository.ProfessionalRepository {
	return &professionalRepository{NewBaseRepository(db)}
}

func NewClinicRepository(db *sqlx.DB) repository.ClinicRepository {
	return &clinicRepository{NewBaseRepository(db)}
}

func NewEvolutionRepository(db *sqlx.DB) repository.EvolutionRepository {
	return &evolutionRepository{NewBaseRepository(db)}
}

func NewBillingRepository(db *sqlx.DB) repository.BillingRepository {
	return &billingRepository{NewBaseRepository(db)}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}
