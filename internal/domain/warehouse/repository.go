package warehouse

import (
	"context"

	"warebase/internal/core/id"
)

// --- Pagination ---

// PageRequest contains pagination parameters for list queries.
// Page index is 0-based.
type PageRequest struct {
	Page int
	Size int

	// Sort names a column, optionally prefixed with "-" for descending
	// order (e.g. "name", "-created_at"). Empty means the default order.
	Sort string
}

// DefaultPageRequest returns the default pagination (first page of 20).
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 0, Size: 20}
}

// Offset calculates the SQL offset.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page contains one page of results plus totals.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage builds a Page from content and the total row count.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int(total) / req.Size
		if int(total)%req.Size > 0 {
			totalPages++
		}
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// --- Filtering ---

// SearchFilter holds the optional predicates of the filtered search.
// A nil field is excluded from the query entirely; string filters match
// as case-insensitive substrings, IsActive matches exactly.
type SearchFilter struct {
	Code     *string
	Name     *string
	City     *string
	State    *string
	Country  *string
	IsActive *bool
}

// --- Repository ---

// Repository defines persistence for warehouse records.
//
// Contract notes:
//   - Create assigns ID, CreatedAt, UpdatedAt and Version=0 on the given
//     entity; a unique-constraint violation on code yields a Duplicate error.
//   - Update performs an optimistic version check against entity.Version
//     and, on success, advances entity.Version and entity.UpdatedAt in place.
//   - GetByID/GetByCode return a NotFound error when no row matches.
//   - Delete removes the row permanently and returns NotFound for absent ids.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, entityID id.ID) (*Warehouse, error)
	GetByCode(ctx context.Context, code string) (*Warehouse, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)

	List(ctx context.Context) ([]*Warehouse, error)
	ListPage(ctx context.Context, req PageRequest) (Page[*Warehouse], error)
	ListActive(ctx context.Context) ([]*Warehouse, error)
	ListActivePage(ctx context.Context, req PageRequest) (Page[*Warehouse], error)
	ListByCity(ctx context.Context, city string) ([]*Warehouse, error)
	ListByState(ctx context.Context, state string) ([]*Warehouse, error)
	ListByCountry(ctx context.Context, country string) ([]*Warehouse, error)
	Search(ctx context.Context, filter SearchFilter, req PageRequest) (Page[*Warehouse], error)

	Update(ctx context.Context, w *Warehouse) error
	Delete(ctx context.Context, entityID id.ID) error
}
