package warehouse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestToEntity_IgnoresStoreAssignedFields(t *testing.T) {
	someID := id.New()
	now := time.Now()
	version := int64(7)

	dto := &DTO{
		ID:        &someID,
		Code:      strPtr("WH-01"),
		Name:      strPtr("Main"),
		City:      strPtr("Berlin"),
		IsActive:  boolPtr(true),
		CreatedAt: &now,
		UpdatedAt: &now,
		Version:   &version,
	}

	w := dto.ToEntity()

	assert.True(t, id.IsNil(w.ID))
	assert.True(t, w.CreatedAt.IsZero())
	assert.True(t, w.UpdatedAt.IsZero())
	assert.Equal(t, int64(0), w.Version)
	assert.Equal(t, "WH-01", w.Code)
	assert.Equal(t, "Main", w.Name)
	require.NotNil(t, w.City)
	assert.Equal(t, "Berlin", *w.City)
	assert.True(t, w.IsActive)
}

func TestApplyTo_MergesOnlyPresentFields(t *testing.T) {
	w := &Warehouse{
		ID:       id.New(),
		Code:     "WH-01",
		Name:     "Main",
		City:     strPtr("Berlin"),
		Address:  strPtr("Alexanderplatz 1"),
		IsActive: true,
		Version:  3,
	}

	dto := &DTO{
		Name: strPtr("Main Renamed"),
		City: strPtr("Hamburg"),
	}
	dto.ApplyTo(w)

	assert.Equal(t, "Main Renamed", w.Name)
	require.NotNil(t, w.City)
	assert.Equal(t, "Hamburg", *w.City)

	// Absent fields stay untouched
	require.NotNil(t, w.Address)
	assert.Equal(t, "Alexanderplatz 1", *w.Address)
	assert.True(t, w.IsActive)
	assert.Equal(t, int64(3), w.Version)
}

func TestApplyTo_CodeIsImmutable(t *testing.T) {
	w := &Warehouse{Code: "WH-01", Name: "Main"}

	dto := &DTO{Code: strPtr("WH-99"), Name: strPtr("Other")}
	dto.ApplyTo(w)

	assert.Equal(t, "WH-01", w.Code)
	assert.Equal(t, "Other", w.Name)
}

func TestValidateCreate(t *testing.T) {
	valid := func() *DTO {
		return &DTO{
			Code:     strPtr("WH-01"),
			Name:     strPtr("Main"),
			IsActive: boolPtr(true),
		}
	}

	tests := []struct {
		name    string
		mutate  func(d *DTO)
		wantErr string
	}{
		{"valid", func(d *DTO) {}, ""},
		{"missing code", func(d *DTO) { d.Code = nil }, "code is required"},
		{"empty code", func(d *DTO) { d.Code = strPtr("") }, "code is required"},
		{"missing name", func(d *DTO) { d.Name = nil }, "name is required"},
		{"missing isActive", func(d *DTO) { d.IsActive = nil }, "Active status is required"},
		{"code too long", func(d *DTO) { d.Code = strPtr(strings.Repeat("x", MaxCodeLen+1)) }, "must not exceed 20"},
		{"name too long", func(d *DTO) { d.Name = strPtr(strings.Repeat("x", MaxNameLen+1)) }, "must not exceed 100"},
		{"multibyte name at bound", func(d *DTO) { d.Name = strPtr(strings.Repeat("я", MaxNameLen)) }, ""},
		{"multibyte name over bound", func(d *DTO) { d.Name = strPtr(strings.Repeat("я", MaxNameLen+1)) }, "must not exceed 100"},
		{"address too long", func(d *DTO) { d.Address = strPtr(strings.Repeat("x", MaxAddressLen+1)) }, "must not exceed 200"},
		{"bad email", func(d *DTO) { d.Email = strPtr("not-an-email") }, "Invalid email format"},
		{"good email", func(d *DTO) { d.Email = strPtr("ops@example.com") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := valid()
			tt.mutate(dto)

			err := dto.ValidateCreate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		dto     *DTO
		wantErr bool
	}{
		{"empty dto is valid", &DTO{}, false},
		{"name present and non-empty", &DTO{Name: strPtr("Renamed")}, false},
		{"name present but empty", &DTO{Name: strPtr("")}, true},
		{"email format checked", &DTO{Email: strPtr("broken@")}, true},
		{"bounds checked", &DTO{City: strPtr(strings.Repeat("x", MaxCityLen+1))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dto.ValidateUpdate()
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
