package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ainews/internal/ports"
)

// SupabaseStore issues PostgREST calls against a hosted Postgres instance.
type SupabaseStore struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ ports.Store = (*SupabaseStore)(nil)

// NewSupabaseStore validates credentials at construction so a misconfigured
// deployment fails fast instead of surfacing confusing errors downstream.
func NewSupabaseStore(baseURL, apiKey string) (*SupabaseStore, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Insert posts one record to the table, reporting the store's verdict.
func (s *SupabaseStore) Insert(ctx context.Context, table string, record map[string]any) (ports.InsertResult, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return ports.InsertResult{}, fmt.Errorf("marshal record: %w", err)
	}

	endpoint := s.baseURL + "/rest/v1/" + table
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.InsertResult{}, fmt.Errorf("new request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return ports.InsertResult{}, fmt.Errorf("insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return ports.InsertResult{
		Success:    resp.StatusCode == http.StatusCreated,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(payload)),
	}, nil
}

// Query selects rows matching every filter as an equality predicate.
func (s *SupabaseStore) Query(ctx context.Context, table string, filters map[string]string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("select", "*")
	for column, value := range filters {
		params.Set(column, "eq."+value)
	}

	endpoint := s.baseURL + "/rest/v1/" + table + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("query %s: %s: %s", table, resp.Status, strings.TrimSpace(string(payload)))
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func (s *SupabaseStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
