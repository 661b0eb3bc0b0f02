package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/signworks/internal/estimate"
	"github.com/Simplici0/signworks/internal/export"
	"github.com/Simplici0/signworks/internal/pricing"
)

const (
	maxRequestBytes  = 1 << 20
	maxEstimateRows  = 500
	maxTitleLength   = 200
	createdAtLayout  = "2006-01-02 15:04:05"
	estimateTextDate = "2006-01-02 15:04"
)

var errEstimateNotFound = errors.New("estimate not found")

type estimateListItem struct {
	ID        string  `json:"id"`
	CreatedAt string  `json:"createdAt"`
	Title     string  `json:"title"`
	Total     float64 `json:"total"`
}

func (s *server) handleEstimateCalculate(w http.ResponseWriter, r *http.Request) {
	req, err := parseEstimateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	est, err := s.estimator.Calculate(r.Context(), req)
	if err != nil {
		s.estimateFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *server) handleEstimateCreate(w http.ResponseWriter, r *http.Request) {
	req, err := parseEstimateRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	est, err := s.estimator.Calculate(r.Context(), req)
	if err != nil {
		s.estimateFailed(w, r, err)
		return
	}
	if err := s.saveEstimate(r.Context(), est); err != nil {
		s.log.Error("save estimate", zap.String("estimate_id", est.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save estimate")
		return
	}

	w.Header().Set("Location", "/api/estimates/"+est.ID)
	writeJSON(w, http.StatusCreated, est)
}

func (s *server) estimateFailed(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		// Client went away; nothing useful to send.
		return
	}
	s.log.Error("calculate estimate", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "failed to calculate estimate")
}

func (s *server) handleEstimatesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	estimates, err := s.listEstimates(r.Context(), query)
	if err != nil {
		s.log.Error("list estimates", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load estimates")
		return
	}
	writeJSON(w, http.StatusOK, estimates)
}

func (s *server) handleEstimateDetail(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *server) handleEstimateText(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, renderEstimateText(est))
}

func (s *server) handleEstimateXLSX(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(est)+`"`)
	if err := export.WriteWorkbook(w, est); err != nil {
		s.log.Error("export estimate", zap.String("estimate_id", est.ID), zap.Error(err))
	}
}

// loadEstimate reads the {id} snapshot, writing the error response itself
// when it cannot.
func (s *server) loadEstimate(w http.ResponseWriter, r *http.Request) (*estimate.Estimate, bool) {
	id := chi.URLParam(r, "id")
	est, err := s.getEstimateDetail(r.Context(), id)
	switch {
	case errors.Is(err, errEstimateNotFound):
		writeError(w, http.StatusNotFound, "estimate not found")
		return nil, false
	case err != nil:
		s.log.Error("load estimate", zap.String("estimate_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load estimate")
		return nil, false
	}
	return est, true
}

func parseEstimateRequest(r *http.Request) (estimate.Request, error) {
	var req estimate.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return estimate.Request{}, fmt.Errorf("invalid estimate body: %w", err)
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Notes = strings.TrimSpace(req.Notes)
	if len(req.Title) > maxTitleLength {
		return estimate.Request{}, fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	if len(req.Rows) == 0 {
		return estimate.Request{}, errors.New("estimate needs at least one row")
	}
	if len(req.Rows) > maxEstimateRows {
		return estimate.Request{}, fmt.Errorf("estimate has %d rows, the limit is %d", len(req.Rows), maxEstimateRows)
	}
	for i, row := range req.Rows {
		if row.ProductType == "" {
			return estimate.Request{}, fmt.Errorf("row %d: productType is required", i+1)
		}
	}
	return req, nil
}

func (s *server) saveEstimate(ctx context.Context, est *estimate.Estimate) error {
	prefsJSON, err := json.Marshal(est.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	totalsJSON, err := json.Marshal(est.Totals)
	if err != nil {
		return fmt.Errorf("encode totals: %w", err)
	}
	rowsJSON, err := json.Marshal(est.Lines)
	if err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO estimates (id, created_at, title, notes, preferences_json, totals_json, rows_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, est.ID, est.CreatedAt.UTC().Format(createdAtLayout), est.Title, est.Notes,
		string(prefsJSON), string(totalsJSON), string(rowsJSON)); err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

func (s *server) listEstimates(ctx context.Context, query string) ([]estimateListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			totals_json
		FROM estimates
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	estimates := make([]estimateListItem, 0)
	for rows.Next() {
		var item estimateListItem
		var createdAt any
		var totalsJSON string
		if err := rows.Scan(&item.ID, &createdAt, &item.Title, &totalsJSON); err != nil {
			return nil, err
		}
		item.CreatedAt = formatCreatedAt(createdAt)
		item.Total = extractTotalFromJSON(totalsJSON)
		estimates = append(estimates, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return estimates, nil
}

// extractTotalFromJSON reads the subtotal from a stored totals snapshot.
func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]any
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}

	for _, key := range []string{"subtotal", "total"} {
		if total, ok := values[key].(float64); ok {
			return total
		}
	}

	return 0
}

// getEstimateDetail returns the stored snapshot. Prices are never
// recalculated, so a saved estimate survives later rate changes.
func (s *server) getEstimateDetail(ctx context.Context, id string) (*estimate.Estimate, error) {
	var (
		est        estimate.Estimate
		createdAt  any
		prefsJSON  string
		totalsJSON string
		rowsJSON   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, notes, preferences_json, totals_json, rows_json
		FROM estimates
		WHERE id = ?
	`, id).Scan(&est.ID, &createdAt, &est.Title, &est.Notes, &prefsJSON, &totalsJSON, &rowsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errEstimateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query estimate: %w", err)
	}

	if err := json.Unmarshal([]byte(prefsJSON), &est.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &est.Totals); err != nil {
		return nil, fmt.Errorf("decode totals: %w", err)
	}
	if err := json.Unmarshal([]byte(rowsJSON), &est.Lines); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}
	if t, ok := parseCreatedAt(createdAt); ok {
		est.CreatedAt = t
	}
	return &est, nil
}

// The sqlite driver hands DATETIME columns back either as time.Time or as
// the stored text, depending on how the row was written.
func parseCreatedAt(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		for _, layout := range []string{createdAtLayout, time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	case []byte:
		return parseCreatedAt(string(t))
	}
	return time.Time{}, false
}

func formatCreatedAt(v any) string {
	if t, ok := parseCreatedAt(v); ok {
		return t.Format(createdAtLayout)
	}
	return fmt.Sprint(v)
}

func renderEstimateText(est *estimate.Estimate) string {
	var b strings.Builder

	title := est.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "Estimate: %s\n", title)
	fmt.Fprintf(&b, "ID: %s\n", est.ID)
	if !est.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", est.CreatedAt.Format(estimateTextDate))
	}
	if est.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", est.Notes)
	}

	b.WriteString("\nLines:\n")
	for i, line := range est.Lines {
		if line.Status != pricing.StatusCompleted || line.Data == nil {
			fmt.Fprintf(&b, "%d. %s [%s] %s\n", i+1, line.ProductType, line.Status, line.Display)
			continue
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, line.Data.ItemName, line.Display)
		for _, c := range line.Data.Components {
			fmt.Fprintf(&b, "   - %s %s (%s)\n", c.Name, pricing.FormatMoney(c.Price), c.CalculationDisplay)
		}
	}

	fmt.Fprintf(&b, "\nRows: %d priced, %d pending, %d errors\n", est.CompletedRows, est.PendingRows, est.ErrorRows)
	fmt.Fprintf(&b, "Subtotal: %s\n", pricing.FormatMoney(est.Subtotal))
	return b.String()
}
