package warehouse

import (
	"fmt"
	"time"
	"unicode/utf8"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
)

// DTO is the external representation of a warehouse record.
// All fields are pointers so that an absent JSON field is distinguishable
// from an empty one; on update, nil means "leave the stored value as is".
type DTO struct {
	ID          *id.ID     `json:"id,omitempty"`
	Code        *string    `json:"code,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Address     *string    `json:"address,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	PostalCode  *string    `json:"postalCode,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	ManagerName *string    `json:"managerName,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Version     *int64     `json:"version,omitempty"`
}

// ToDTO converts an entity to its external representation.
// Identity, audit and version fields are included.
func ToDTO(w *Warehouse) *DTO {
	entityID := w.ID
	code := w.Code
	name := w.Name
	isActive := w.IsActive
	createdAt := w.CreatedAt
	updatedAt := w.UpdatedAt
	version := w.Version

	return &DTO{
		ID:          &entityID,
		Code:        &code,
		Name:        &name,
		Address:     w.Address,
		City:        w.City,
		State:       w.State,
		PostalCode:  w.PostalCode,
		Country:     w.Country,
		Phone:       w.Phone,
		Email:       w.Email,
		ManagerName: w.ManagerName,
		IsActive:    &isActive,
		CreatedAt:   &createdAt,
		UpdatedAt:   &updatedAt,
		Version:     &version,
	}
}

// ToEntity converts the DTO to a new entity.
// ID, CreatedAt, UpdatedAt and Version are store-assigned and deliberately
// not copied from the DTO. Callers must run ValidateCreate first.
func (d *DTO) ToEntity() *Warehouse {
	w := &Warehouse{
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		PostalCode:  d.PostalCode,
		Country:     d.Country,
		Phone:       d.Phone,
		Email:       d.Email,
		ManagerName: d.ManagerName,
	}
	if d.Code != nil {
		w.Code = *d.Code
	}
	if d.Name != nil {
		w.Name = *d.Name
	}
	if d.IsActive != nil {
		w.IsActive = *d.IsActive
	}
	return w
}

// ApplyTo merges non-nil DTO fields into an existing entity.
// Code is immutable after creation; identity, audit and version fields are
// managed by the store. Nil DTO fields leave the entity untouched, so a
// partial update never nulls out stored values.
func (d *DTO) ApplyTo(w *Warehouse) {
	if d.Name != nil {
		w.Name = *d.Name
	}
	if d.Address != nil {
		w.Address = d.Address
	}
	if d.City != nil {
		w.City = d.City
	}
	if d.State != nil {
		w.State = d.State
	}
	if d.PostalCode != nil {
		w.PostalCode = d.PostalCode
	}
	if d.Country != nil {
		w.Country = d.Country
	}
	if d.Phone != nil {
		w.Phone = d.Phone
	}
	if d.Email != nil {
		w.Email = d.Email
	}
	if d.ManagerName != nil {
		w.ManagerName = d.ManagerName
	}
	if d.IsActive != nil {
		w.IsActive = *d.IsActive
	}
}

// ValidateCreate checks invariants for a create request:
// required fields present, length bounds, email format.
func (d *DTO) ValidateCreate() error {
	if d.Code == nil || *d.Code == "" {
		return apperror.NewValidation("Warehouse code is required").WithDetail("field", "code")
	}
	if d.Name == nil || *d.Name == "" {
		return apperror.NewValidation("Warehouse name is required").WithDetail("field", "name")
	}
	if d.IsActive == nil {
		return apperror.NewValidation("Active status is required").WithDetail("field", "isActive")
	}
	return d.validateBounds()
}

// ValidateUpdate checks invariants for a partial update:
// only bounds and formats of the fields actually present.
func (d *DTO) ValidateUpdate() error {
	if d.Name != nil && *d.Name == "" {
		return apperror.NewValidation("Warehouse name is required").WithDetail("field", "name")
	}
	return d.validateBounds()
}

func (d *DTO) validateBounds() error {
	checks := []struct {
		field string
		value *string
		max   int
	}{
		{"code", d.Code, MaxCodeLen},
		{"name", d.Name, MaxNameLen},
		{"address", d.Address, MaxAddressLen},
		{"city", d.City, MaxCityLen},
		{"state", d.State, MaxStateLen},
		{"postalCode", d.PostalCode, MaxPostalCodeLen},
		{"country", d.Country, MaxCountryLen},
		{"phone", d.Phone, MaxPhoneLen},
		{"email", d.Email, MaxEmailLen},
		{"managerName", d.ManagerName, MaxManagerNameLen},
	}
	// Bounds are characters, not bytes, matching the VARCHAR(n) columns.
	for _, c := range checks {
		if c.value != nil && utf8.RuneCountInString(*c.value) > c.max {
			return apperror.NewValidation(fmt.Sprintf("%s must not exceed %d characters", c.field, c.max)).
				WithDetail("field", c.field).
				WithDetail("max", c.max)
		}
	}

	if d.Email != nil && *d.Email != "" && !isValidEmail(*d.Email) {
		return apperror.NewValidation("Invalid email format").
			WithDetail("field", "email").
			WithDetail("value", *d.Email)
	}

	return nil
}
