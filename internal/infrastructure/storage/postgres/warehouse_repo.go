package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
	"warebase/internal/domain/warehouse"
)

const warehouseTable = "warehouses"

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

var warehouseColumns = []string{
	"id", "code", "name",
	"address", "city", "state", "postal_code", "country",
	"phone", "email", "manager_name",
	"is_active", "created_at", "updated_at", "version",
}

// WarehouseRepo implements warehouse.Repository on PostgreSQL using
// squirrel statement builders and pgxscan row mapping. The querier is
// obtained from TxManager: the transaction in context when present,
// the pool otherwise.
type WarehouseRepo struct {
	txm *TxManager
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *TxManager) *WarehouseRepo {
	return &WarehouseRepo{txm: txm}
}

// builder returns a squirrel builder with PostgreSQL placeholder format.
func (r *WarehouseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *WarehouseRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(warehouseColumns...).
		From(warehouseTable)
}

// Create inserts a new row, assigning id, timestamps and version 0.
func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	if id.IsNil(w.ID) {
		w.ID = id.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	w.Version = 0

	q := r.builder().
		Insert(warehouseTable).
		Columns(warehouseColumns...).
		Values(
			w.ID, w.Code, w.Name,
			w.Address, w.City, w.State, w.PostalCode, w.Country,
			w.Phone, w.Email, w.ManagerName,
			w.IsActive, w.CreatedAt, w.UpdatedAt, w.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		// The unique index on code resolves create races the service
		// level ExistsByCode check cannot see.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewDuplicate("warehouse", "code", w.Code).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", warehouseTable, err)
	}

	return nil
}

// GetByID retrieves a warehouse by id.
func (r *WarehouseRepo) GetByID(ctx context.Context, entityID id.ID) (*warehouse.Warehouse, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	return r.getOne(ctx, q, entityID.String())
}

// GetByCode retrieves a warehouse by code (exact, case-sensitive match).
func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	return r.getOne(ctx, q, code)
}

// ExistsByCode checks if a warehouse with the given code exists.
func (r *WarehouseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := r.builder().
		Select("1").
		From(warehouseTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var exists int
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by code: %w", err)
	}

	return true, nil
}

// List retrieves all warehouses ordered by code.
func (r *WarehouseRepo) List(ctx context.Context) ([]*warehouse.Warehouse, error) {
	return r.selectMany(ctx, r.baseSelect().OrderBy("code ASC"))
}

// ListPage retrieves one page of warehouses.
func (r *WarehouseRepo) ListPage(ctx context.Context, req warehouse.PageRequest) (warehouse.Page[*warehouse.Warehouse], error) {
	return r.paginate(ctx, r.baseSelect(), req)
}

// ListActive retrieves all active warehouses ordered by code.
func (r *WarehouseRepo) ListActive(ctx context.Context) ([]*warehouse.Warehouse, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("code ASC")
	return r.selectMany(ctx, q)
}

// ListActivePage retrieves one page of active warehouses.
func (r *WarehouseRepo) ListActivePage(ctx context.Context, req warehouse.PageRequest) (warehouse.Page[*warehouse.Warehouse], error) {
	q := r.baseSelect().Where(squirrel.Eq{"is_active": true})
	return r.paginate(ctx, q, req)
}

// ListByCity retrieves warehouses in the given city (exact match).
func (r *WarehouseRepo) ListByCity(ctx context.Context, city string) ([]*warehouse.Warehouse, error) {
	return r.listByColumn(ctx, "city", city)
}

// ListByState retrieves warehouses in the given state (exact match).
func (r *WarehouseRepo) ListByState(ctx context.Context, state string) ([]*warehouse.Warehouse, error) {
	return r.listByColumn(ctx, "state", state)
}

// ListByCountry retrieves warehouses in the given country (exact match).
func (r *WarehouseRepo) ListByCountry(ctx context.Context, country string) ([]*warehouse.Warehouse, error) {
	return r.listByColumn(ctx, "country", country)
}

// Search retrieves one page of warehouses matching the filter.
func (r *WarehouseRepo) Search(ctx context.Context, filter warehouse.SearchFilter, req warehouse.PageRequest) (warehouse.Page[*warehouse.Warehouse], error) {
	return r.paginate(ctx, r.searchQuery(filter), req)
}

// searchQuery builds the dynamic filter query: each non-nil string
// filter becomes a case-insensitive substring predicate, IsActive an
// equality predicate. Nil filters are excluded entirely, so an empty
// filter selects every row.
func (r *WarehouseRepo) searchQuery(filter warehouse.SearchFilter) squirrel.SelectBuilder {
	q := r.baseSelect()

	stringFilters := []struct {
		column string
		value  *string
	}{
		{"code", filter.Code},
		{"name", filter.Name},
		{"city", filter.City},
		{"state", filter.State},
		{"country", filter.Country},
	}
	for _, f := range stringFilters {
		if f.value != nil {
			q = q.Where(squirrel.ILike{f.column: "%" + *f.value + "%"})
		}
	}

	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	return q
}

// Update modifies an existing row with an optimistic version check.
// On success the entity's version and updated_at are advanced in place
// to mirror the stored row.
func (r *WarehouseRepo) Update(ctx context.Context, w *warehouse.Warehouse) error {
	now := time.Now().UTC()

	sql, args, err := r.updateQuery(w, now).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", warehouseTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(warehouseTable, w.ID)
	}

	w.UpdatedAt = now
	w.Version++

	return nil
}

// updateQuery builds the update statement. Code, id and created_at are
// never part of the SET list; the version predicate is the optimistic
// lock against the version the caller read.
func (r *WarehouseRepo) updateQuery(w *warehouse.Warehouse, now time.Time) squirrel.UpdateBuilder {
	return r.builder().
		Update(warehouseTable).
		Set("name", w.Name).
		Set("address", w.Address).
		Set("city", w.City).
		Set("state", w.State).
		Set("postal_code", w.PostalCode).
		Set("country", w.Country).
		Set("phone", w.Phone).
		Set("email", w.Email).
		Set("manager_name", w.ManagerName).
		Set("is_active", w.IsActive).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": w.ID}).
		Where(squirrel.Eq{"version": w.Version})
}

// Delete performs physical removal from the database.
func (r *WarehouseRepo) Delete(ctx context.Context, entityID id.ID) error {
	q := r.builder().
		Delete(warehouseTable).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute delete %s: %w", warehouseTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("warehouse", entityID.String())
	}

	return nil
}

// --- Helpers ---

func (r *WarehouseRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*warehouse.Warehouse, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w warehouse.Warehouse
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("warehouse", key)
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}

	return &w, nil
}

func (r *WarehouseRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*warehouse.Warehouse, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []*warehouse.Warehouse{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}

	return items, nil
}

func (r *WarehouseRepo) listByColumn(ctx context.Context, column, value string) ([]*warehouse.Warehouse, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{column: value}).
		OrderBy("code ASC")
	return r.selectMany(ctx, q)
}

// paginate counts the filtered set, then fetches the requested page.
func (r *WarehouseRepo) paginate(ctx context.Context, q squirrel.SelectBuilder, req warehouse.PageRequest) (warehouse.Page[*warehouse.Warehouse], error) {
	var zero warehouse.Page[*warehouse.Warehouse]

	// Count total before pagination
	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return zero, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return zero, fmt.Errorf("count: %w", err)
	}

	orderBy, err := parseOrderBy(req.Sort)
	if err != nil {
		return zero, err
	}
	q = q.OrderBy(orderBy)

	if req.Size > 0 {
		q = q.Limit(uint64(req.Size))
	}
	if req.Offset() > 0 {
		q = q.Offset(uint64(req.Offset()))
	}

	items, err := r.selectMany(ctx, q)
	if err != nil {
		return zero, err
	}

	return warehouse.NewPage(items, req, total), nil
}

// parseOrderBy validates the sort parameter against the column whitelist.
// "-field" sorts descending, the default is code ascending.
func parseOrderBy(sort string) (string, error) {
	if sort == "" {
		return "code ASC", nil
	}

	direction := "ASC"
	field := sort
	if strings.HasPrefix(sort, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(sort, "-")
	} else if strings.HasPrefix(sort, "+") {
		field = strings.TrimPrefix(sort, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid sort").WithDetail("sort", sort)
	}

	allowed := false
	for _, col := range warehouseColumns {
		if col == field {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperror.NewValidation("invalid sort").WithDetail("sort", sort).WithDetail("field", field)
	}

	return field + " " + direction, nil
}
