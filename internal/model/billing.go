package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodTransfer  PaymentMethod = "transfer"
	PaymentMethodInsurance PaymentMethod = "insurance"
)

// FinancialTransaction records a billing entry. At most one transaction
// may reference a given appointment, which makes invoice generation for
// a completed appointment idempotent.
type FinancialTransaction struct {
	Base
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	AppointmentID   *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	Type            TransactionType `db:"type" json:"type"`
	Method          PaymentMethod   `db:"method" json:"method"`
	AmountCents     int64           `db:"amount_cents" json:"amount_cents"`
	Description     string          `db:"description" json:"description,omitempty"`
	TransactionDate time.Time       `db:"transaction_date" json:"transaction_date"`
}

type CreateTransactionRequest struct {
	PatientID       uuid.UUID       `json:"patient_id" binding:"required"`
	AppointmentID   *uuid.UUID      `json:"appointment_id"`
	Type            TransactionType `json:"type" binding:"required"`
	Method          PaymentMethod   `json:"method" binding:"required"`
	AmountCents     int64           `json:"amount_cents" binding:"required"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
}

type UpdateTransactionRequest struct {
	Type            *TransactionType `json:"type"`
	Method          *PaymentMethod   `json:"method"`
	AmountCents     *int64           `json:"amount_cents"`
	Description     *string          `json:"description"`
	TransactionDate *time.Time       `json:"transaction_date"`
}
