package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/phillip-england/staffdesk/internal/supabase"
	"github.com/phillip-england/staffdesk/internal/supabase/supabasetest"
)

type row struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

func newClient(t *testing.T, fake *supabasetest.Server) *supabase.Client {
	t.Helper()
	client, err := supabase.New(supabase.Config{URL: fake.URL, APIKey: supabasetest.APIKey})
	require.NoError(t, err)
	return client
}

func TestNewRejectsMissingSettings(t *testing.T) {
	_, err := supabase.New(supabase.Config{APIKey: "k"})
	assert.ErrorIs(t, err, supabase.ErrMissingURL)

	_, err = supabase.New(supabase.Config{URL: "https://example.supabase.co"})
	assert.ErrorIs(t, err, supabase.ErrMissingKey)

	_, err = supabase.New(supabase.Config{URL: "ftp://example.supabase.co", APIKey: "k"})
	assert.Error(t, err)
}

func TestSelectOrdersAndFilters(t *testing.T) {
	fake := supabasetest.New(t)
	fake.Seed("employees",
		map[string]any{"id": "1", "name": "Zoe", "department": "Sales"},
		map[string]any{"id": "2", "name": "Adam", "department": "Ops"},
		map[string]any{"id": "3", "name": "Mia", "department": "Sales"},
	)
	client := newClient(t, fake)

	var rows []row
	err := client.From("employees").Order("name", true).Select(context.Background(), "*", &rows)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Adam", "Mia", "Zoe"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})

	reqs := fake.RequestsFor(http.MethodGet)
	require.Len(t, reqs, 1)
	assert.Equal(t, "employees", reqs[0].Table)
	assert.Equal(t, "*", reqs[0].Query.Get("select"))
	assert.Equal(t, "name.asc", reqs[0].Query.Get("order"))

	rows = nil
	err = client.From("employees").Eq("id", "3").Limit(1).Select(context.Background(), "", &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Mia", rows[0].Name)

	last := fake.RequestsFor(http.MethodGet)[1]
	assert.Equal(t, "eq.3", last.Query.Get("id"))
	assert.Equal(t, "1", last.Query.Get("limit"))
}

func TestInsertPostsArray(t *testing.T) {
	fake := supabasetest.New(t)
	client := newClient(t, fake)

	err := client.From("employees").Insert(context.Background(), []map[string]string{
		{"name": "Ana", "department": "HR"},
	})
	require.NoError(t, err)

	reqs := fake.RequestsFor(http.MethodPost)
	require.Len(t, reqs, 1)
	assert.Equal(t, "return=minimal", reqs[0].Prefer)

	var sent []map[string]string
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, "Ana", sent[0]["name"])

	rows := fake.Rows("employees")
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0]["id"])
}

func TestUpdateIsScopedToFilter(t *testing.T) {
	fake := supabasetest.New(t)
	fake.Seed("employees",
		map[string]any{"id": "1", "name": "Zoe", "department": "Sales"},
		map[string]any{"id": "2", "name": "Adam", "department": "Ops"},
	)
	client := newClient(t, fake)

	err := client.From("employees").Eq("id", "2").Update(context.Background(), map[string]string{"department": "Finance"})
	require.NoError(t, err)

	rows := fake.Rows("employees")
	assert.Equal(t, "Sales", rows[0]["department"])
	assert.Equal(t, "Finance", rows[1]["department"])

	reqs := fake.RequestsFor(http.MethodPatch)
	require.Len(t, reqs, 1)
	assert.Equal(t, "eq.2", reqs[0].Query.Get("id"))
}

func TestUpdateWithoutFilterIsRefused(t *testing.T) {
	fake := supabasetest.New(t)
	client := newClient(t, fake)

	err := client.From("employees").Update(context.Background(), map[string]string{"name": "x"})
	assert.ErrorIs(t, err, supabase.ErrUnfilteredUpdate)
	assert.Empty(t, fake.Requests())
}

func TestErrorResponsesDecode(t *testing.T) {
	fake := supabasetest.New(t)
	fake.Fail(http.MethodGet, http.StatusInternalServerError, "relation does not exist")
	client := newClient(t, fake)

	var rows []row
	err := client.From("employees").Select(context.Background(), "*", &rows)
	require.Error(t, err)

	var apiErr *supabase.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "relation does not exist", apiErr.Message)
	assert.True(t, supabase.IsStatus(err, http.StatusInternalServerError))
}

func TestWrongKeyIsUnauthorized(t *testing.T) {
	fake := supabasetest.New(t)
	client, err := supabase.New(supabase.Config{URL: fake.URL, APIKey: "nope"})
	require.NoError(t, err)

	var rows []row
	err = client.From("employees").Select(context.Background(), "*", &rows)
	assert.True(t, supabase.IsStatus(err, http.StatusUnauthorized))
}

func TestRequestsRunInClientSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	fake := supabasetest.New(t)
	fake.Fail(http.MethodPost, http.StatusConflict, "duplicate key")
	client := newClient(t, fake)

	var rows []row
	require.NoError(t, client.From("employees").Select(context.Background(), "*", &rows))
	require.Error(t, client.From("employees").Insert(context.Background(), []row{{Name: "Amy"}}))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "supabase.get employees", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", http.StatusOK))
	assert.Equal(t, "supabase.post employees", spans[1].Name())
	assert.Equal(t, "duplicate key", spans[1].Status().Description)
}
