package employees_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/staffdesk/internal/employees"
	"github.com/phillip-england/staffdesk/internal/supabase"
	"github.com/phillip-england/staffdesk/internal/supabase/supabasetest"
)

func newStore(t *testing.T) (*employees.SupabaseStore, *supabasetest.Server) {
	t.Helper()
	fake := supabasetest.New(t)
	client, err := supabase.New(supabase.Config{URL: fake.URL, APIKey: supabasetest.APIKey})
	require.NoError(t, err)
	return employees.NewSupabaseStore(client, ""), fake
}

func TestStoreListOrdersByColumn(t *testing.T) {
	store, fake := newStore(t)
	fake.Seed("employees",
		map[string]any{"id": 2, "name": "Zed", "department": "Ops", "position": nil},
		map[string]any{"id": 1, "name": "Amy", "department": "Sales", "position": "Lead"},
	)

	list, err := store.List(context.Background(), employees.ColumnName)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, employees.ID("1"), list[0].ID)
	assert.Equal(t, "Amy", list[0].Name)
	assert.Equal(t, "", list[1].Position)

	reqs := fake.RequestsFor(http.MethodGet)
	require.Len(t, reqs, 1)
	assert.Equal(t, "name.asc", reqs[0].Query.Get("order"))
}

func TestStoreGetMissingRow(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Get(context.Background(), "404")
	assert.ErrorIs(t, err, employees.ErrNotFound)
}

func TestStoreInsertAndUpdate(t *testing.T) {
	store, fake := newStore(t)

	require.NoError(t, store.Insert(context.Background(), employees.Fields{Name: "Ana", Department: "Sales"}))
	rows := fake.Rows("employees")
	require.Len(t, rows, 1)
	id, ok := rows[0]["id"].(string)
	require.True(t, ok)

	var sent []map[string]any
	require.NoError(t, json.Unmarshal(fake.RequestsFor(http.MethodPost)[0].Body, &sent))
	_, hasID := sent[0]["id"]
	assert.False(t, hasID, "insert payload must not carry an id")

	err := store.Update(context.Background(), employees.ID(id), employees.Fields{Name: "Ana B", Department: "Sales"})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), employees.ID(id))
	require.NoError(t, err)
	assert.Equal(t, "Ana B", got.Name)
	assert.Equal(t, "eq."+id, fake.RequestsFor(http.MethodPatch)[0].Query.Get("id"))
}

func TestIDDecodesNumbersAndStrings(t *testing.T) {
	var rows []employees.Employee
	raw := `[{"id": 17, "name": "a"}, {"id": "7f1c", "name": "b"}, {"id": null, "name": "c"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	assert.Equal(t, employees.ID("17"), rows[0].ID)
	assert.Equal(t, employees.ID("7f1c"), rows[1].ID)
	assert.Equal(t, employees.ID(""), rows[2].ID)
}
