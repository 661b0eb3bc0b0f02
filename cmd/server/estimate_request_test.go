package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Simplici0/signworks/internal/estimate"
	"github.com/Simplici0/signworks/internal/pricingdata"
)

type fakePricing struct {
	snap     *pricingdata.Snapshot
	gen      uint64
	clearErr error
	cleared  int
}

func (f *fakePricing) Snapshot(context.Context) (*pricingdata.Snapshot, uint64, error) {
	return f.snap, f.gen, nil
}

func (f *fakePricing) ClearCache(context.Context) error {
	f.cleared++
	f.gen++
	return f.clearErr
}

const ulRequestBody = `{
	"title": "  Main St  ",
	"rows": [
		{"id": "u1", "productType": "ul", "fields": {"field1": {"kind": "count", "amount": 3}, "quantity": 1}},
		{"id": "u2", "productType": "ul", "fields": {"field1": {"kind": "count", "amount": 3}, "quantity": 1}}
	]
}`

func TestParseEstimateRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/estimates/calculate", strings.NewReader(ulRequestBody))

	parsed, err := parseEstimateRequest(req)
	if err != nil {
		t.Fatalf("parseEstimateRequest returned error: %v", err)
	}
	if parsed.Title != "Main St" {
		t.Fatalf("expected trimmed title, got %q", parsed.Title)
	}
	if len(parsed.Rows) != 2 || parsed.Rows[0].ProductType != "ul" {
		t.Fatalf("unexpected rows: %+v", parsed.Rows)
	}
	if n, ok := parsed.Rows[0].Fields.Number("field1"); !ok || n != 3 {
		t.Fatalf("expected count override of 3, got %v %v", n, ok)
	}
}

func TestParseEstimateRequestRejectsInvalidBodies(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"rows": [`,
		"unknown field":  `{"rows": [{"productType": "ul"}], "discount": 5}`,
		"no rows":        `{"title": "empty", "rows": []}`,
		"no type":        `{"rows": [{"id": "r1", "fields": {"quantity": 1}}]}`,
		"long title":     `{"title": "` + strings.Repeat("x", maxTitleLength+1) + `", "rows": [{"productType": "ul"}]}`,
		"bad field kind": `{"rows": [{"productType": "ul", "fields": {"field1": {"kind": "percent", "amount": 1}}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/estimates/calculate", strings.NewReader(body))
			if _, err := parseEstimateRequest(req); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestCalculateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/estimates/calculate", strings.NewReader(ulRequestBody)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var est estimate.Estimate
	if err := json.NewDecoder(rr.Body).Decode(&est); err != nil {
		t.Fatalf("failed to decode estimate: %v", err)
	}
	if est.Subtotal != 300 || est.CompletedRows != 2 {
		t.Fatalf("unexpected totals: %+v", est.Totals)
	}

	list, err := srv.listEstimates(context.Background(), "")
	if err != nil {
		t.Fatalf("listEstimates returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("calculate must not persist, found %d estimates", len(list))
	}
}

func TestCreateEndpointPersistsSnapshot(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/estimates", strings.NewReader(ulRequestBody)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created estimate.Estimate
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode estimate: %v", err)
	}
	if loc := rr.Header().Get("Location"); loc != "/api/estimates/"+created.ID {
		t.Fatalf("unexpected Location %q", loc)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/estimates?q=main", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var list []estimateListItem
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID || list[0].Total != 300 {
		t.Fatalf("unexpected list: %+v", list)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/estimates/"+created.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestCalculateEndpointRejectsBadRequest(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/estimates/calculate", strings.NewReader(`{"rows": []}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Fatalf("expected error body, got %v %v", body, err)
	}
}

func TestPricingEndpoints(t *testing.T) {
	srv := newTestServer(t)
	fake := srv.pricing.(*fakePricing)
	handler := srv.routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pricing/snapshot", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var snapshot struct {
		Generation uint64 `json:"generation"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&snapshot); err != nil || snapshot.Generation != 1 {
		t.Fatalf("unexpected snapshot response: %+v %v", snapshot, err)
	}

	fake.clearErr = errors.New("redis down")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/pricing/cache/clear", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 even when a shared tier fails, got %d", rr.Code)
	}
	if fake.cleared != 1 {
		t.Fatalf("expected one clear, got %d", fake.cleared)
	}
}

func TestPricingCacheClearIsThrottled(t *testing.T) {
	srv := newTestServer(t)
	fake := srv.pricing.(*fakePricing)
	handler := srv.routes()

	var last *httptest.ResponseRecorder
	for i := 0; i < cacheClearBurst+1; i++ {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/api/pricing/cache/clear", nil))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 past the burst, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if fake.cleared != cacheClearBurst {
		t.Fatalf("expected %d clears, got %d", cacheClearBurst, fake.cleared)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
