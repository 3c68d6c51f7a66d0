package postgres

import (
	"strings"
	"testing"
	"time"

	"warebase/internal/core/apperror"
	"warebase/internal/domain/warehouse"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

const selectColumns = "SELECT id, code, name, address, city, state, postal_code, country, " +
	"phone, email, manager_name, is_active, created_at, updated_at, version FROM warehouses"

func TestSearchQuery(t *testing.T) {
	repo := NewWarehouseRepo(nil)

	tests := []struct {
		name     string
		filter   warehouse.SearchFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "empty filter selects everything",
			filter:   warehouse.SearchFilter{},
			wantSQL:  selectColumns,
			wantArgs: nil,
		},
		{
			name:     "single string filter becomes ILIKE substring",
			filter:   warehouse.SearchFilter{City: strPtr("new")},
			wantSQL:  selectColumns + " WHERE city ILIKE $1",
			wantArgs: []any{"%new%"},
		},
		{
			name:     "isActive is an equality predicate",
			filter:   warehouse.SearchFilter{IsActive: boolPtr(true)},
			wantSQL:  selectColumns + " WHERE is_active = $1",
			wantArgs: []any{true},
		},
		{
			name: "filters combine with AND in column order",
			filter: warehouse.SearchFilter{
				Code:     strPtr("WH"),
				Country:  strPtr("US"),
				IsActive: boolPtr(false),
			},
			wantSQL:  selectColumns + " WHERE code ILIKE $1 AND country ILIKE $2 AND is_active = $3",
			wantArgs: []any{"%WH%", "%US%", false},
		},
		{
			name:     "empty string still filters (matches everything)",
			filter:   warehouse.SearchFilter{Name: strPtr("")},
			wantSQL:  selectColumns + " WHERE name ILIKE $1",
			wantArgs: []any{"%%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.searchQuery(tt.filter).ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestParseOrderBy(t *testing.T) {
	tests := []struct {
		sort    string
		want    string
		wantErr bool
	}{
		{"", "code ASC", false},
		{"name", "name ASC", false},
		{"+name", "name ASC", false},
		{"-created_at", "created_at DESC", false},
		{"version", "version ASC", false},
		{"-", "", true},
		{"no_such_column", "", true},
		{"code; DROP TABLE warehouses", "", true},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.sort, func(t *testing.T) {
			got, err := parseOrderBy(tt.sort)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.sort, got)
				}
				appErr, ok := apperror.AsAppError(err)
				if !ok || appErr.Code != apperror.CodeValidation {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy(%q) failed: %v", tt.sort, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderBy(%q) = %q, want %q", tt.sort, got, tt.want)
			}
		})
	}
}

func TestUpdateQuery_OptimisticVersionCheck(t *testing.T) {
	repo := NewWarehouseRepo(nil)

	w := &warehouse.Warehouse{Name: "Main", Version: 3}
	sql, args, err := repo.updateQuery(w, time.Now().UTC()).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.Contains(sql, "WHERE id = $") || !strings.Contains(sql, "AND version = $") {
		t.Errorf("update must filter on id and expected version, got: %s", sql)
	}
	if !strings.Contains(sql, "version = version + 1") {
		t.Errorf("update must advance the version, got: %s", sql)
	}

	setClause := strings.SplitN(sql, " WHERE ", 2)[0]
	setClause = strings.TrimPrefix(setClause, "UPDATE warehouses SET ")
	for _, assignment := range strings.Split(setClause, ", ") {
		column := strings.SplitN(assignment, " = ", 2)[0]
		switch column {
		case "id", "code", "created_at":
			t.Errorf("immutable column in SET list: %q\nsql: %s", column, sql)
		}
	}
	if args[len(args)-1] != int64(3) {
		t.Errorf("expected version 3 as last arg, got %v", args[len(args)-1])
	}
}
