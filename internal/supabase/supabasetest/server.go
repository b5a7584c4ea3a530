// Package supabasetest runs an in-memory stand-in for the PostgREST subset the
// supabase client speaks. It is meant for tests only.
package supabasetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

const APIKey = "test-anon-key"

// Request is one call the fake received.
type Request struct {
	Method string
	Table  string
	Query  url.Values
	Prefer string
	Body   []byte
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tables   map[string][]map[string]any
	requests []Request
	failures map[string]failure
}

// New starts a fake and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		tables:   map[string][]map[string]any{},
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Seed appends rows to table. Rows without an id get a fresh uuid.
func (s *Server) Seed(table string, rows ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.tables[table] = append(s.tables[table], withID(row))
	}
}

// Rows returns a copy of table's rows in insertion order.
func (s *Server) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		out = append(out, cloneRow(row))
	}
	return out
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the requests received with method.
func (s *Server) RequestsFor(method string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// Fail makes every request with method answer status with a PostgREST error body.
func (s *Server) Fail(method string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = failure{status: status, message: message}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	table, ok := strings.CutPrefix(r.URL.Path, "/rest/v1/")
	if !ok || table == "" || strings.Contains(table, "/") {
		writeError(w, http.StatusNotFound, "PGRST125", "invalid path")
		return
	}
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method: r.Method,
		Table:  table,
		Query:  r.URL.Query(),
		Prefer: r.Header.Get("Prefer"),
		Body:   body,
	})

	if r.Header.Get("apikey") != APIKey || r.Header.Get("Authorization") != "Bearer "+APIKey {
		writeError(w, http.StatusUnauthorized, "", "Invalid API key")
		return
	}
	if f, failing := s.failures[r.Method]; failing {
		writeError(w, f.status, "XX000", f.message)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.selectRows(w, table, r.URL.Query())
	case http.MethodPost:
		s.insertRows(w, table, body)
	case http.MethodPatch:
		s.updateRows(w, table, r.URL.Query(), body)
	default:
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	}
}

func (s *Server) selectRows(w http.ResponseWriter, table string, query url.Values) {
	rows := make([]map[string]any, 0)
	for _, row := range s.tables[table] {
		if matches(row, query) {
			rows = append(rows, cloneRow(row))
		}
	}

	if order := query.Get("order"); order != "" {
		keys := strings.Split(order, ",")
		sort.SliceStable(rows, func(i, j int) bool {
			for _, key := range keys {
				column, dir, _ := strings.Cut(key, ".")
				a, b := fmt.Sprint(rows[i][column]), fmt.Sprint(rows[j][column])
				if a == b {
					continue
				}
				if dir == "desc" {
					return a > b
				}
				return a < b
			}
			return false
		})
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

func (s *Server) insertRows(w http.ResponseWriter, table string, body []byte) {
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		var single map[string]any
		if err := json.Unmarshal(body, &single); err != nil {
			writeError(w, http.StatusBadRequest, "PGRST102", "invalid json body")
			return
		}
		rows = []map[string]any{single}
	}
	for _, row := range rows {
		s.tables[table] = append(s.tables[table], withID(row))
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) updateRows(w http.ResponseWriter, table string, query url.Values, body []byte) {
	var values map[string]any
	if err := json.Unmarshal(body, &values); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", "invalid json body")
		return
	}
	for _, row := range s.tables[table] {
		if !matches(row, query) {
			continue
		}
		for k, v := range values {
			if k == "id" {
				continue
			}
			row[k] = v
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func matches(row map[string]any, query url.Values) bool {
	for column, values := range query {
		switch column {
		case "select", "order", "limit":
			continue
		}
		for _, v := range values {
			want, ok := strings.CutPrefix(v, "eq.")
			if !ok {
				return false
			}
			if fmt.Sprint(row[column]) != want {
				return false
			}
		}
	}
	return true
}

func withID(row map[string]any) map[string]any {
	out := cloneRow(row)
	if id, ok := out["id"]; !ok || id == nil || id == "" {
		out["id"] = uuid.NewString()
	}
	return out
}

func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
