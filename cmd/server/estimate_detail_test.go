package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/signworks/internal/estimate"
	"github.com/Simplici0/signworks/internal/export"
	"github.com/Simplici0/signworks/internal/pricing"
)

func ulEstimateRow(id string, sets float64) estimate.Row {
	return estimate.Row{
		ID:          id,
		ProductType: pricing.ProductUL,
		Fields: pricing.ParsedFieldValues{
			pricing.Field1:   pricing.OverrideValue(pricing.Count(sets)),
			pricing.Quantity: pricing.NumberValue(1),
		},
	}
}

func saveTestEstimate(t *testing.T, srv *server) *estimate.Estimate {
	t.Helper()

	est, err := srv.estimator.Calculate(context.Background(), estimate.Request{
		Title: "Main St",
		Notes: "two listings",
		Rows:  []estimate.Row{ulEstimateRow("u1", 3), ulEstimateRow("u2", 3)},
	})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	est.CreatedAt = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	if err := srv.saveEstimate(context.Background(), est); err != nil {
		t.Fatalf("saveEstimate returned error: %v", err)
	}
	return est
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetEstimateDetailReadsSnapshotWithoutRecalculation(t *testing.T) {
	srv := newTestServer(t)
	saved := saveTestEstimate(t, srv)

	// Prices stored with the estimate win over whatever the rates are now.
	if _, err := srv.db.Exec(`UPDATE estimates SET totals_json = '{"subtotal": 999.99, "completedRows": 2}' WHERE id = ?`, saved.ID); err != nil {
		t.Fatalf("failed to edit snapshot: %v", err)
	}

	detail, err := srv.getEstimateDetail(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("getEstimateDetail returned error: %v", err)
	}

	if detail.Subtotal != 999.99 {
		t.Fatalf("expected snapshot subtotal 999.99, got %.2f", detail.Subtotal)
	}
	if detail.Title != "Main St" || detail.Notes != "two listings" {
		t.Fatalf("unexpected header: %+v", detail)
	}
	if len(detail.Lines) != 2 || detail.Lines[0].RowID != "u1" || detail.Lines[1].Data.UnitPrice != 75 {
		t.Fatalf("unexpected lines: %+v", detail.Lines)
	}
	if !detail.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", saved.CreatedAt, detail.CreatedAt)
	}
}

func TestGetEstimateDetailNotFound(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.getEstimateDetail(context.Background(), "missing")
	if !errors.Is(err, errEstimateNotFound) {
		t.Fatalf("expected errEstimateNotFound, got %v", err)
	}

	rr := httptest.NewRecorder()
	srv.handleEstimateDetail(rr, withID(httptest.NewRequest(http.MethodGet, "/api/estimates/missing", nil), "missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleEstimateTextReturnsPlainText(t *testing.T) {
	srv := newTestServer(t)
	saved := saveTestEstimate(t, srv)

	req := withID(httptest.NewRequest(http.MethodGet, "/api/estimates/"+saved.ID+"/text", nil), saved.ID)
	rr := httptest.NewRecorder()
	srv.handleEstimateText(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"Estimate: Main St",
		"Date: 2024-03-09 14:30",
		"1. UL Listing: $225 × 1 = $225",
		"Rows: 2 priced, 0 pending, 0 errors",
		"Subtotal: $300",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in text summary:\n%s", want, body)
		}
	}
}

func TestHandleEstimateXLSX(t *testing.T) {
	srv := newTestServer(t)
	saved := saveTestEstimate(t, srv)

	req := withID(httptest.NewRequest(http.MethodGet, "/api/estimates/"+saved.ID+"/xlsx", nil), saved.ID)
	rr := httptest.NewRecorder()
	srv.handleEstimateXLSX(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "estimate_20240309.xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	if title, _ := f.GetCellValue("Estimate", "A1"); title != "Main St" {
		t.Fatalf("unexpected workbook title %q", title)
	}
}
