package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/signworks/internal/estimate"
	"github.com/Simplici0/signworks/internal/pricing"
)

func sampleEstimate() *estimate.Estimate {
	data := &pricing.PricingCalculationData{
		ProductTypeID: pricing.ProductUL,
		RowID:         "u1",
		ItemName:      "UL Listing",
		UnitPrice:     225,
		Quantity:      2,
		Components: []pricing.ComponentItem{
			{Name: "UL", Price: 225, Type: pricing.ComponentUL, CalculationDisplay: "Base $150 + 3 sets × $25 = $75"},
		},
	}
	lines := []estimate.Line{
		{RowID: "u1", ProductType: pricing.ProductUL, RowCalculationResult: pricing.Completed(data)},
		{RowID: "p1", ProductType: pricing.ProductPainting, RowCalculationResult: pricing.Pending("Painting dimensions required")},
	}
	return &estimate.Estimate{
		ID:        "0d3c",
		CreatedAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		Title:     "Main St storefront",
		Lines:     lines,
		Totals:    estimate.Summarize(lines),
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleEstimate()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)

	assert.Equal(t, "Main St storefront", rows[0][0])
	assert.Equal(t, headers, rows[3])

	assert.Equal(t, "u1", rows[4][0])
	assert.Equal(t, "UL Listing", rows[4][3])
	assert.Equal(t, "UL", rows[4][4])
	assert.Equal(t, "Line total", rows[5][4])
	assert.Equal(t, "$225 × 2 = $450", rows[5][5])

	assert.Equal(t, "p1", rows[6][0])
	assert.Equal(t, "Painting dimensions required", rows[6][5])
	assert.Equal(t, "pending", rows[6][9])

	last := rows[len(rows)-1]
	assert.Equal(t, "Subtotal", last[0])
	assert.Equal(t, "1 priced, 1 pending, 0 errors", last[2])

	total, err := f.GetCellValue(sheetName, "I9", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "450", total)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "estimate_20260304.xlsx", Filename(sampleEstimate()))
}
