package model

type Clinic struct {
	Base
	Name     string `db:"name" json:"name"`
	TaxID    string `db:"tax_id" json:"tax_id,omitempty"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

type CreateClinicRequest struct {
	Name  string `json:"name" binding:"required"`
	TaxID string `json:"tax_id"`
}

type UpdateClinicRequest struct {
	Name     *string `json:"name"`
	TaxID    *string `json:"tax_id"`
	IsActive *bool   `json:"is_active"`
}
