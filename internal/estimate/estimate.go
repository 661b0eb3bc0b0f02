// Package estimate prices a whole job: it folds the cross-row UL state in
// display order, then prices rows concurrently against one set of lookup
// tables.
package estimate

import (
	"fmt"
	"time"

	"github.com/Simplici0/signworks/internal/pricing"
)

// Row is one line of an estimate as entered, in display order.
type Row struct {
	ID                  string                    `json:"id"`
	Section             string                    `json:"section,omitempty"`
	ProductType         pricing.ProductType       `json:"productType"`
	Fields              pricing.ParsedFieldValues `json:"fields"`
	Calculated          pricing.CalculatedValues  `json:"calculated"`
	HasValidationErrors bool                      `json:"hasValidationErrors,omitempty"`
}

// Request is an estimate to price.
type Request struct {
	Title       string                      `json:"title"`
	Notes       string                      `json:"notes"`
	Preferences pricing.CustomerPreferences `json:"preferences"`
	Rows        []Row                       `json:"rows"`
}

// Line is the priced result of one row.
type Line struct {
	RowID       string              `json:"rowId"`
	Section     string              `json:"section,omitempty"`
	ProductType pricing.ProductType `json:"productType"`
	pricing.RowCalculationResult
}

// Totals summarise the lines of an estimate.
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	CompletedRows int     `json:"completedRows"`
	PendingRows   int     `json:"pendingRows"`
	ErrorRows     int     `json:"errorRows"`
}

// Estimate is a priced job. Subtotal only counts completed lines.
type Estimate struct {
	ID          string                      `json:"id"`
	CreatedAt   time.Time                   `json:"createdAt"`
	Title       string                      `json:"title"`
	Notes       string                      `json:"notes"`
	Preferences pricing.CustomerPreferences `json:"preferences"`
	Lines       []Line                      `json:"lines"`
	Totals
	Generation uint64 `json:"generation"`
}

// Summarize recomputes totals from lines.
func Summarize(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		switch l.Status {
		case pricing.StatusCompleted:
			t.CompletedRows++
			t.Subtotal += l.Data.ExtendedPrice()
		case pricing.StatusPending:
			t.PendingRows++
		case pricing.StatusError:
			t.ErrorRows++
		}
	}
	t.Subtotal = pricing.RoundCents(t.Subtotal)
	return t
}

// Prepare turns rows into calculator inputs. A row's section counts as UL
// when any row of the same section asks for UL. ULExistsInPreviousRows is
// left false: whether an earlier row charged UL is only known once it is
// priced, so Estimator.Calculate folds it in display order.
func Prepare(rows []Row, prefs pricing.CustomerPreferences, registry pricing.Registry) []pricing.ValidatedPricingInput {
	inputs := make([]pricing.ValidatedPricingInput, len(rows))
	for i, r := range rows {
		calc := r.Calculated
		calc.ULExistsInPreviousRows = false
		inputs[i] = pricing.ValidatedPricingInput{
			RowID:               rowID(r, i),
			ProductTypeID:       r.ProductType,
			ParsedValues:        r.Fields,
			CalculatedValues:    calc,
			CustomerPreferences: prefs,
			HasValidationErrors: r.HasValidationErrors,
		}
	}

	requests := ulRequests(inputs, registry)
	sectionUL := make(map[string]bool)
	for i, r := range rows {
		if requests[i] {
			sectionUL[r.Section] = true
		}
	}
	for i, r := range rows {
		inputs[i].CalculatedValues.SectionHasUL = inputs[i].CalculatedValues.SectionHasUL || sectionUL[r.Section]
	}
	return inputs
}

// ulRequests reports, per input, whether its calculator would bill UL for it.
func ulRequests(inputs []pricing.ValidatedPricingInput, registry pricing.Registry) []bool {
	out := make([]bool, len(inputs))
	for i, in := range inputs {
		if in.HasValidationErrors {
			continue
		}
		if biller, ok := registry[in.ProductTypeID].(pricing.ULBiller); ok {
			out[i] = biller.BillsUL(in)
		}
	}
	return out
}

func setULBilled(in *pricing.ValidatedPricingInput, billed bool) {
	in.ULExistsInPreviousRows = billed
	in.CalculatedValues.ULExistsInPreviousRows = billed
}

func rowID(r Row, i int) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("row-%d", i+1)
}
