// Package export renders saved estimates as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/signworks/internal/estimate"
	"github.com/Simplici0/signworks/internal/pricing"
)

const (
	sheetName = "Estimate"
	// ContentType is the MIME type of Workbook output.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Row", "Section", "Product", "Item", "Component", "Calculation", "Unit Price", "Qty", "Extended", "Status"}

var colWidths = []float64{10, 14, 16, 22, 20, 48, 12, 8, 12, 12}

// Workbook lays an estimate out one line per component. Each priced row ends
// with a line carrying its unit and extended price; pending and error rows
// get a single line with their reason.
func Workbook(est *estimate.Estimate) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#8EA9DB", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFmt := "$#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	title := est.Title
	if title == "" {
		title = "Estimate " + est.ID
	}
	f.SetCellValue(sheetName, "A1", title)
	f.SetCellValue(sheetName, "A2", est.CreatedAt.Format("2006-01-02 15:04"))

	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s4", col)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, boldStyle)
	}

	row := 5
	for _, line := range est.Lines {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line.RowID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), line.Section)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), string(line.ProductType))

		if line.Status != pricing.StatusCompleted || line.Data == nil {
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), line.Display)
			f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), string(line.Status))
			row++
			continue
		}

		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), line.Data.ItemName)
		for _, c := range line.Data.Components {
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), c.Name)
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), c.CalculationDisplay)
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), c.Price)
			f.SetCellStyle(sheetName, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), moneyStyle)
			row++
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line.RowID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), "Line total")
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), line.Display)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), line.Data.UnitPrice)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), line.Data.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), line.Data.ExtendedPrice())
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), string(line.Status))
		f.SetCellStyle(sheetName, fmt.Sprintf("G%d", row), fmt.Sprintf("I%d", row), totalStyle)
		row++
	}

	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Subtotal")
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("%d priced, %d pending, %d errors",
		est.CompletedRows, est.PendingRows, est.ErrorRows))
	f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), est.Subtotal)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), totalStyle)

	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, w)
	}
	return f, nil
}

// WriteWorkbook renders est straight to w.
func WriteWorkbook(w io.Writer, est *estimate.Estimate) error {
	f, err := Workbook(est)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename is the download name for est.
func Filename(est *estimate.Estimate) string {
	return fmt.Sprintf("estimate_%s.xlsx", est.CreatedAt.Format("20060102"))
}
