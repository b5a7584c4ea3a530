package employees

import (
	"context"

	"github.com/phillip-england/staffdesk/internal/supabase"
)

const DefaultTable = "employees"

// SupabaseStore reads and writes the employees table through PostgREST.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

func NewSupabaseStore(client *supabase.Client, table string) *SupabaseStore {
	if table == "" {
		table = DefaultTable
	}
	return &SupabaseStore{client: client, table: table}
}

func (s *SupabaseStore) List(ctx context.Context, orderBy string) ([]Employee, error) {
	var rows []Employee
	if err := s.client.From(s.table).Order(orderBy, true).Select(ctx, "*", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SupabaseStore) Get(ctx context.Context, id ID) (Employee, error) {
	var rows []Employee
	if err := s.client.From(s.table).Eq(ColumnID, id.String()).Limit(1).Select(ctx, "*", &rows); err != nil {
		return Employee{}, err
	}
	if len(rows) == 0 {
		return Employee{}, ErrNotFound
	}
	return rows[0], nil
}

func (s *SupabaseStore) Insert(ctx context.Context, rows ...Fields) error {
	return s.client.From(s.table).Insert(ctx, rows)
}

func (s *SupabaseStore) Update(ctx context.Context, id ID, fields Fields) error {
	return s.client.From(s.table).Eq(ColumnID, id.String()).Update(ctx, fields)
}
