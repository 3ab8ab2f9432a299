package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTOption configures the RESTStore.
type RESTOption func(*RESTStore)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) RESTOption {
	return func(s *RESTStore) {
		s.httpClient = httpClient
	}
}

// WithBaseURL overrides the backend URL (useful for testing).
func WithBaseURL(u string) RESTOption {
	return func(s *RESTStore) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// RESTStore talks to a PostgREST-compatible managed backend
// (<base>/rest/v1/<table>).
type RESTStore struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
}

// NewRESTStore creates a client for the backend at baseURL authenticated
// with apiKey.
func NewRESTStore(baseURL, apiKey string, opts ...RESTOption) *RESTStore {
	s := &RESTStore{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close is a no-op; the HTTP client holds no per-store resources.
func (s *RESTStore) Close() error { return nil }

// Query issues GET /rest/v1/<table>?select=*&col=eq.v&order=col.desc&limit=n.
func (s *RESTStore) Query(ctx context.Context, q Query) ([]Row, error) {
	if err := validQuery(q); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("select", "*")
	for _, f := range q.Filters {
		params.Add(f.Column, "eq."+formatValue(f.Value))
	}
	if q.Order != nil {
		dir := "asc"
		if q.Order.Desc {
			dir = "desc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	body, err := s.do(ctx, http.MethodGet, s.tableURL(q.Table, params), nil, "")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", q.Table, err)
	}
	return rows, nil
}

// Update issues PATCH filtered by key and asks for the affected rows back
// so a missing key surfaces as ErrNotFound.
func (s *RESTStore) Update(ctx context.Context, table string, key Key, fields Row) error {
	if err := validWrite(table, &key, fields); err != nil {
		return err
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s update: %w", table, err)
	}
	body, err := s.do(ctx, http.MethodPatch, s.keyURL(table, key), payload, "return=representation")
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return expectReturned(body, table, key)
}

// Insert issues POST with a single JSON object.
func (s *RESTStore) Insert(ctx context.Context, table string, fields Row) error {
	if err := validWrite(table, nil, fields); err != nil {
		return err
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s insert: %w", table, err)
	}
	if _, err := s.do(ctx, http.MethodPost, s.tableURL(table, nil), payload, "return=minimal"); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Delete issues DELETE filtered by key.
func (s *RESTStore) Delete(ctx context.Context, table string, key Key) error {
	if err := validWrite(table, &key, nil); err != nil {
		return err
	}
	body, err := s.do(ctx, http.MethodDelete, s.keyURL(table, key), nil, "return=representation")
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return expectReturned(body, table, key)
}

func (s *RESTStore) tableURL(table string, params url.Values) string {
	u := s.baseURL + "/rest/v1/" + table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (s *RESTStore) keyURL(table string, key Key) string {
	params := url.Values{}
	params.Set(key.Column, "eq."+formatValue(key.Value))
	return s.tableURL(table, params)
}

// do performs an authenticated request and returns the body of any 2xx
// response.
func (s *RESTStore) do(ctx context.Context, method, u string, payload []byte, prefer string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("backend returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func expectReturned(body []byte, table string, key Key) error {
	rows, err := decodeRows(body)
	if err != nil {
		return fmt.Errorf("failed to parse %s response: %w", table, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s %s=%v: %w", table, key.Column, key.Value, ErrNotFound)
	}
	return nil
}

// decodeRows keeps numbers as json.Number so bigint ids survive intact.
func decodeRows(body []byte) ([]Row, error) {
	rows := make([]Row, 0)
	if len(bytes.TrimSpace(body)) == 0 {
		return rows, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
