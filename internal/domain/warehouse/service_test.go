package warehouse

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warebase/internal/core/apperror"
	"warebase/internal/core/id"
)

// fakeRepo is an in-memory Repository with the same contract as the
// PostgreSQL implementation: Create assigns identity and version 0,
// Update enforces the optimistic version check.
type fakeRepo struct {
	rows map[id.ID]*Warehouse
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[id.ID]*Warehouse)}
}

func (r *fakeRepo) Create(_ context.Context, w *Warehouse) error {
	for _, row := range r.rows {
		if row.Code == w.Code {
			return apperror.NewDuplicate("warehouse", "code", w.Code)
		}
	}
	if id.IsNil(w.ID) {
		w.ID = id.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	w.Version = 0

	clone := *w
	r.rows[w.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, entityID id.ID) (*Warehouse, error) {
	row, ok := r.rows[entityID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", entityID.String())
	}
	clone := *row
	return &clone, nil
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*Warehouse, error) {
	for _, row := range r.rows {
		if row.Code == code {
			clone := *row
			return &clone, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse", code)
}

func (r *fakeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, row := range r.rows {
		if row.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) List(_ context.Context) ([]*Warehouse, error) {
	return r.matching(func(*Warehouse) bool { return true }), nil
}

func (r *fakeRepo) ListPage(ctx context.Context, req PageRequest) (Page[*Warehouse], error) {
	return r.page(r.matching(func(*Warehouse) bool { return true }), req), nil
}

func (r *fakeRepo) ListActive(_ context.Context) ([]*Warehouse, error) {
	return r.matching(func(w *Warehouse) bool { return w.IsActive }), nil
}

func (r *fakeRepo) ListActivePage(ctx context.Context, req PageRequest) (Page[*Warehouse], error) {
	return r.page(r.matching(func(w *Warehouse) bool { return w.IsActive }), req), nil
}

func (r *fakeRepo) ListByCity(_ context.Context, city string) ([]*Warehouse, error) {
	return r.matching(func(w *Warehouse) bool { return w.City != nil && *w.City == city }), nil
}

func (r *fakeRepo) ListByState(_ context.Context, state string) ([]*Warehouse, error) {
	return r.matching(func(w *Warehouse) bool { return w.State != nil && *w.State == state }), nil
}

func (r *fakeRepo) ListByCountry(_ context.Context, country string) ([]*Warehouse, error) {
	return r.matching(func(w *Warehouse) bool { return w.Country != nil && *w.Country == country }), nil
}

func (r *fakeRepo) Search(_ context.Context, filter SearchFilter, req PageRequest) (Page[*Warehouse], error) {
	contains := func(value *string, needle *string) bool {
		if needle == nil {
			return true
		}
		if value == nil {
			return false
		}
		return strings.Contains(strings.ToLower(*value), strings.ToLower(*needle))
	}

	items := r.matching(func(w *Warehouse) bool {
		if !contains(&w.Code, filter.Code) || !contains(&w.Name, filter.Name) {
			return false
		}
		if !contains(w.City, filter.City) || !contains(w.State, filter.State) || !contains(w.Country, filter.Country) {
			return false
		}
		if filter.IsActive != nil && w.IsActive != *filter.IsActive {
			return false
		}
		return true
	})
	return r.page(items, req), nil
}

func (r *fakeRepo) Update(_ context.Context, w *Warehouse) error {
	row, ok := r.rows[w.ID]
	if !ok || row.Version != w.Version {
		return apperror.NewConcurrentModification("warehouses", w.ID)
	}

	now := time.Now().UTC()
	clone := *w
	clone.UpdatedAt = now
	clone.Version++
	r.rows[w.ID] = &clone

	w.UpdatedAt = now
	w.Version++
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, entityID id.ID) error {
	if _, ok := r.rows[entityID]; !ok {
		return apperror.NewNotFound("warehouse", entityID.String())
	}
	delete(r.rows, entityID)
	return nil
}

func (r *fakeRepo) matching(pred func(*Warehouse) bool) []*Warehouse {
	items := []*Warehouse{}
	for _, row := range r.rows {
		if pred(row) {
			clone := *row
			items = append(items, &clone)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return items
}

func (r *fakeRepo) page(items []*Warehouse, req PageRequest) Page[*Warehouse] {
	total := int64(len(items))
	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.Size
	if req.Size <= 0 || end > len(items) {
		end = len(items)
	}
	return NewPage(items[start:end], req, total)
}

// noopTxManager runs functions directly, without a database.
type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (noopTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, noopTxManager{}), repo
}

func createDTO(code, name string) *DTO {
	return &DTO{
		Code:     strPtr(code),
		Name:     strPtr(name),
		IsActive: boolPtr(true),
	}
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	dto := createDTO("WH-01", "Main Warehouse")
	dto.City = strPtr("New York")

	created, err := svc.Create(ctx, dto)
	require.NoError(t, err)

	require.NotNil(t, created.ID)
	assert.False(t, id.IsNil(*created.ID))
	assert.Equal(t, "WH-01", *created.Code)
	require.NotNil(t, created.Version)
	assert.Equal(t, int64(0), *created.Version)
	require.NotNil(t, created.CreatedAt)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestService_Create_DuplicateCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, createDTO("WH-01", "First"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createDTO("WH-01", "Second"))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, 409, apperror.GetHTTPStatus(err))
}

func TestService_Create_ValidationFails(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Create(context.Background(), &DTO{Name: strPtr("No Code")})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.rows)
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByID(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_GetByCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, createDTO("WH-01", "Main"))
	require.NoError(t, err)

	found, err := svc.GetByCode(ctx, "WH-01")
	require.NoError(t, err)
	assert.Equal(t, "Main", *found.Name)

	// Exact, case-sensitive match
	_, err = svc.GetByCode(ctx, "wh-01")
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Update_PartialMerge(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	dto := createDTO("WH-01", "Main")
	dto.Address = strPtr("Alexanderplatz 1")
	created, err := svc.Create(ctx, dto)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, *created.ID, &DTO{Name: strPtr("Main Renamed")})
	require.NoError(t, err)

	assert.Equal(t, "Main Renamed", *updated.Name)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "Alexanderplatz 1", *updated.Address)
	assert.Equal(t, int64(1), *updated.Version)
}

func TestService_Update_CodeStaysImmutable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, createDTO("WH-01", "Main"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, *created.ID, &DTO{Code: strPtr("WH-99")})
	require.NoError(t, err)
	assert.Equal(t, "WH-01", *updated.Code)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), id.New(), &DTO{Name: strPtr("Ghost")})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_SoftDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, createDTO("WH-01", "Main"))
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, *created.ID))

	// Row stays retrievable, deactivated, with advanced version
	found, err := svc.GetByID(ctx, *created.ID)
	require.NoError(t, err)
	assert.False(t, *found.IsActive)
	assert.Equal(t, int64(1), *found.Version)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, createDTO("WH-01", "Main"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, *created.ID))

	_, err = svc.GetByID(ctx, *created.ID)
	assert.True(t, apperror.IsNotFound(err))

	err = svc.Delete(ctx, *created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func seedSearchFixtures(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	fixtures := []struct {
		code, name, city string
		active           bool
	}{
		{"WH-01", "Main Warehouse", "New York", true},
		{"WH-02", "East Coast Hub", "Newark", true},
		{"WH-03", "Old Depot", "Boston", false},
	}
	for _, f := range fixtures {
		dto := createDTO(f.code, f.name)
		dto.City = strPtr(f.city)
		dto.IsActive = boolPtr(f.active)
		_, err := svc.Create(ctx, dto)
		require.NoError(t, err)
	}
}

func TestService_Search_EmptyFilterMatchesAll(t *testing.T) {
	svc, _ := newTestService()
	seedSearchFixtures(t, svc)

	page, err := svc.Search(context.Background(), SearchFilter{}, DefaultPageRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Len(t, page.Content, 3)
}

func TestService_Search_CaseInsensitiveSubstring(t *testing.T) {
	svc, _ := newTestService()
	seedSearchFixtures(t, svc)

	page, err := svc.Search(context.Background(), SearchFilter{City: strPtr("new")}, DefaultPageRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)

	codes := []string{*page.Content[0].Code, *page.Content[1].Code}
	assert.ElementsMatch(t, []string{"WH-01", "WH-02"}, codes)
}

func TestService_Search_CombinesFiltersWithAnd(t *testing.T) {
	svc, _ := newTestService()
	seedSearchFixtures(t, svc)

	active := true
	page, err := svc.Search(context.Background(), SearchFilter{
		Name:     strPtr("hub"),
		IsActive: &active,
	}, DefaultPageRequest())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "WH-02", *page.Content[0].Code)
}

func TestService_Search_IsActiveExact(t *testing.T) {
	svc, _ := newTestService()
	seedSearchFixtures(t, svc)

	inactive := false
	page, err := svc.Search(context.Background(), SearchFilter{IsActive: &inactive}, DefaultPageRequest())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "WH-03", *page.Content[0].Code)
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService()
	seedSearchFixtures(t, svc)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Unpaginated and ordered by code, active or not
	assert.Equal(t, "WH-01", *list[0].Code)
	assert.Equal(t, "WH-03", *list[2].Code)
	assert.False(t, *list[2].IsActive)
}

func TestService_ListPage_Totals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, code := range []string{"WH-01", "WH-02", "WH-03", "WH-04", "WH-05"} {
		_, err := svc.Create(ctx, createDTO(code, "Warehouse "+code))
		require.NoError(t, err)
	}

	page, err := svc.ListPage(ctx, PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "WH-03", *page.Content[0].Code)
}

func TestService_ListByCity_ExactMatch(t *testing.T) {
	svc, _ := newTestService()
	seedSearchFixtures(t, svc)
	ctx := context.Background()

	list, err := svc.ListByCity(ctx, "New York")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "WH-01", *list[0].Code)

	// No substring or case folding on the dedicated list endpoints
	list, err = svc.ListByCity(ctx, "new york")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_ExistsByCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, createDTO("WH-01", "Main"))
	require.NoError(t, err)

	exists, err := svc.ExistsByCode(ctx, "WH-01")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ExistsByCode(ctx, "WH-404")
	require.NoError(t, err)
	assert.False(t, exists)
}
