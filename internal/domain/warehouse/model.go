// Package warehouse provides the warehouse master-data catalog.
// A warehouse represents a physical storage location for goods.
package warehouse

import (
	"regexp"
	"time"

	"warebase/internal/core/id"
)

// Field length limits enforced on input.
const (
	MaxCodeLen        = 20
	MaxNameLen        = 100
	MaxAddressLen     = 200
	MaxCityLen        = 50
	MaxStateLen       = 50
	MaxPostalCodeLen  = 20
	MaxCountryLen     = 50
	MaxPhoneLen       = 20
	MaxEmailLen       = 100
	MaxManagerNameLen = 50
)

// Warehouse is the persisted representation of a warehouse record.
// ID, CreatedAt, UpdatedAt and Version are assigned by the store and
// never taken from caller input.
type Warehouse struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	Address     *string `db:"address" json:"address,omitempty"`
	City        *string `db:"city" json:"city,omitempty"`
	State       *string `db:"state" json:"state,omitempty"`
	PostalCode  *string `db:"postal_code" json:"postalCode,omitempty"`
	Country     *string `db:"country" json:"country,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	ManagerName *string `db:"manager_name" json:"managerName,omitempty"`

	// IsActive is false for deactivated (soft-deleted) records.
	// The row stays queryable either way.
	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Version is the optimistic locking counter, 0 at creation.
	Version int64 `db:"version" json:"version"`
}

// Deactivate marks the warehouse as inactive (soft delete).
func (w *Warehouse) Deactivate() {
	w.IsActive = false
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
