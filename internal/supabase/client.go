// Package supabase is a small client for the PostgREST surface of a hosted
// Supabase project: filtered selects, inserts and filtered updates on one table.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	restPath         = "/rest/v1/"
	tracerName       = "github.com/phillip-england/staffdesk/internal/supabase"
	defaultTimeout   = 8 * time.Second
	maxErrorBodySize = 64 << 10
)

var (
	ErrUnfilteredUpdate = errors.New("update requires at least one filter")
	ErrMissingURL       = errors.New("supabase url is required")
	ErrMissingKey       = errors.New("supabase api key is required")
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	tracer  trace.Tracer
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, ErrMissingURL
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid supabase url %q", cfg.URL)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingKey
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    httpClient,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table}
}

type filter struct {
	column string
	op     string
	value  string
}

type ordering struct {
	column    string
	ascending bool
}

// Query accumulates filters and modifiers. Each terminal call (Select, Insert,
// Update) issues exactly one request.
type Query struct {
	client  *Client
	table   string
	filters []filter
	orders  []ordering
	limit   int
}

func (q *Query) Eq(column, value string) *Query {
	q.filters = append(q.filters, filter{column: column, op: "eq", value: value})
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	q.orders = append(q.orders, ordering{column: column, ascending: ascending})
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Select fetches rows and decodes the JSON array into dst.
func (q *Query) Select(ctx context.Context, columns string, dst any) error {
	if strings.TrimSpace(columns) == "" {
		columns = "*"
	}
	params := q.params()
	params.Set("select", columns)
	if len(q.orders) > 0 {
		parts := make([]string, 0, len(q.orders))
		for _, o := range q.orders {
			dir := "asc"
			if !o.ascending {
				dir = "desc"
			}
			parts = append(parts, o.column+"."+dir)
		}
		params.Set("order", strings.Join(parts, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}

	body, err := q.client.do(ctx, http.MethodGet, q.table, params, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s rows: %w", q.table, err)
	}
	return nil
}

// Insert posts rows as a JSON array. rows must marshal to an array.
func (q *Query) Insert(ctx context.Context, rows any) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s insert: %w", q.table, err)
	}
	_, err = q.client.do(ctx, http.MethodPost, q.table, q.params(), payload)
	return err
}

// Update patches every row matching the query's filters with values. An update
// without filters would rewrite the whole table, so it is refused.
func (q *Query) Update(ctx context.Context, values any) error {
	if len(q.filters) == 0 {
		return ErrUnfilteredUpdate
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode %s update: %w", q.table, err)
	}
	_, err = q.client.do(ctx, http.MethodPatch, q.table, q.params(), payload)
	return err
}

func (q *Query) params() url.Values {
	params := url.Values{}
	for _, f := range q.filters {
		params.Add(f.column, f.op+"."+f.value)
	}
	return params
}

func (c *Client) do(ctx context.Context, method, table string, params url.Values, payload []byte) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "supabase."+strings.ToLower(method)+" "+table,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.collection.name", table),
			attribute.String("http.request.method", method),
		),
	)
	defer span.End()

	endpoint := c.baseURL + restPath + url.PathEscape(table)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build %s request: %w", table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Message)
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, fmt.Errorf("read %s response: %w", table, err)
	}
	return body, nil
}
