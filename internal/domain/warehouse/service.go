package warehouse

import (
	"context"
	"fmt"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/core/tx"
	"warebase/pkg/logger"
)

const entityName = "warehouse"

// Service provides business logic for the warehouse catalog.
// Each operation runs as a single transaction: mutations in a read-write
// transaction, lookups in a read-only one.
type Service struct {
	repo Repository
	txm  tx.ReadOnlyManager
}

// NewService creates a new warehouse service.
func NewService(repo Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txm: txm}
}

// Create persists a new warehouse after validation and the code
// uniqueness check. Returns the stored record with assigned id,
// timestamps and version 0.
func (s *Service) Create(ctx context.Context, dto *DTO) (*DTO, error) {
	if err := dto.ValidateCreate(); err != nil {
		return nil, err
	}

	logger.Info(ctx, "creating warehouse", "code", *dto.Code)

	w := dto.ToEntity()
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByCode(ctx, w.Code)
		if err != nil {
			return fmt.Errorf("check code uniqueness: %w", err)
		}
		if exists {
			return duplicateCode(w.Code)
		}
		return s.repo.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "warehouse created", "id", w.ID, "code", w.Code)
	return ToDTO(w), nil
}

// GetByID returns the warehouse with the given id.
func (s *Service) GetByID(ctx context.Context, entityID id.ID) (*DTO, error) {
	var w *Warehouse
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		w, err = s.repo.GetByID(ctx, entityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(w), nil
}

// GetByCode returns the warehouse with the given code (exact match).
func (s *Service) GetByCode(ctx context.Context, code string) (*DTO, error) {
	var w *Warehouse
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		w, err = s.repo.GetByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(w), nil
}

// List returns all warehouses, unpaginated.
func (s *Service) List(ctx context.Context) ([]*DTO, error) {
	var items []*Warehouse
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

// ListPage returns one page of warehouses.
func (s *Service) ListPage(ctx context.Context, req PageRequest) (Page[*DTO], error) {
	var page Page[*Warehouse]
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		page, err = s.repo.ListPage(ctx, req)
		return err
	})
	if err != nil {
		return Page[*DTO]{}, err
	}
	return mapPage(page), nil
}

// ListActive returns all active warehouses.
func (s *Service) ListActive(ctx context.Context) ([]*DTO, error) {
	var items []*Warehouse
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListActive(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

// ListActivePage returns one page of active warehouses.
func (s *Service) ListActivePage(ctx context.Context, req PageRequest) (Page[*DTO], error) {
	var page Page[*Warehouse]
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		page, err = s.repo.ListActivePage(ctx, req)
		return err
	})
	if err != nil {
		return Page[*DTO]{}, err
	}
	return mapPage(page), nil
}

// ListByCity returns warehouses in the given city (exact match).
func (s *Service) ListByCity(ctx context.Context, city string) ([]*DTO, error) {
	return s.listBy(ctx, s.repo.ListByCity, city)
}

// ListByState returns warehouses in the given state (exact match).
func (s *Service) ListByState(ctx context.Context, state string) ([]*DTO, error) {
	return s.listBy(ctx, s.repo.ListByState, state)
}

// ListByCountry returns warehouses in the given country (exact match).
func (s *Service) ListByCountry(ctx context.Context, country string) ([]*DTO, error) {
	return s.listBy(ctx, s.repo.ListByCountry, country)
}

// Update merges non-nil DTO fields into the stored record and persists it.
// Code is never changed by an update, even when the DTO carries one.
// The store enforces the optimistic version check.
func (s *Service) Update(ctx context.Context, entityID id.ID, dto *DTO) (*DTO, error) {
	if err := dto.ValidateUpdate(); err != nil {
		return nil, err
	}

	logger.Info(ctx, "updating warehouse", "id", entityID)

	var w *Warehouse
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		w, err = s.repo.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		dto.ApplyTo(w)
		return s.repo.Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "warehouse updated", "id", w.ID, "version", w.Version)
	return ToDTO(w), nil
}

// Delete removes the warehouse row permanently.
func (s *Service) Delete(ctx context.Context, entityID id.ID) error {
	logger.Info(ctx, "deleting warehouse", "id", entityID)

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, entityID)
	})
}

// SoftDelete deactivates the warehouse. The row stays retrievable by
// id and code; timestamps and version advance as for a normal update.
func (s *Service) SoftDelete(ctx context.Context, entityID id.ID) error {
	logger.Info(ctx, "soft deleting warehouse", "id", entityID)

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		w.Deactivate()
		return s.repo.Update(ctx, w)
	})
}

// Search returns one page of warehouses matching the filter. Nil filter
// fields do not constrain the result.
func (s *Service) Search(ctx context.Context, filter SearchFilter, req PageRequest) (Page[*DTO], error) {
	var page Page[*Warehouse]
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		page, err = s.repo.Search(ctx, filter, req)
		return err
	})
	if err != nil {
		return Page[*DTO]{}, err
	}
	return mapPage(page), nil
}

// ExistsByCode reports whether a warehouse with the given code exists.
func (s *Service) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		exists, err = s.repo.ExistsByCode(ctx, code)
		return err
	})
	return exists, err
}

// --- Helpers ---

func duplicateCode(code string) error {
	return apperror.NewDuplicate(entityName, "code", code)
}

func (s *Service) listBy(ctx context.Context, fn func(context.Context, string) ([]*Warehouse, error), value string) ([]*DTO, error) {
	var items []*Warehouse
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, err = fn(ctx, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

func toDTOs(items []*Warehouse) []*DTO {
	dtos := make([]*DTO, len(items))
	for i, w := range items {
		dtos[i] = ToDTO(w)
	}
	return dtos
}

func mapPage(page Page[*Warehouse]) Page[*DTO] {
	return Page[*DTO]{
		Content:       toDTOs(page.Content),
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}
