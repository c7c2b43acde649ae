package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models. A row is active iff
// DeletedAt is null; removal is always a soft delete.
type Base struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Active reports whether the row has not been soft-deleted.
func (b *Base) Active() bool {
	return b.DeletedAt == nil
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}
