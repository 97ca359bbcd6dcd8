package export

import (
	"bytes"
	"time"

	"delivery-report-service/internal/report"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary    = "Summary"
	SheetData       = "Data"
	SheetPickup     = "Pickup"
	SheetHistorical = "Historical"
)

// ReportWorkbook renders a general report as a Summary sheet of analytics and a Data sheet of rows.
func ReportWorkbook(rep *report.Report, loc *time.Location) (*bytes.Buffer, error) {
	loc = orUTC(loc)
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	b := &sheetBuilder{file: f}
	if err := b.init(); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Report type", string(rep.Shape)},
		{"Total packages", rep.Analytics.Total},
		{"Total COD", rep.Analytics.TotalCOD},
		{"Total delivery fees", rep.Analytics.TotalFees},
		{"Delivered", rep.Analytics.Delivered},
		{"Pending", rep.Analytics.PendingLike},
		{"Cancelled", rep.Analytics.Cancelled},
		{"Returned", rep.Analytics.Returned},
		{"Delivery rate (%)", rep.Analytics.DeliveryRate},
	}
	if rep.Analytics.AverageDeliveryHours != nil {
		summary = append(summary, []any{"Average delivery hours", *rep.Analytics.AverageDeliveryHours})
	}
	for i, values := range summary {
		if err := b.setRow(SheetSummary, i+1, values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "B", 24); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetData); err != nil {
		return nil, err
	}
	if _, err := b.table(SheetData, rep.Shape, rep.Data, loc); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

// MerchantWorkbook renders the settlement bundle as the Pickup and Historical sheets,
// each closed by a totals footer.
func MerchantWorkbook(bundle *report.WorkbookBundle, loc *time.Location) (*bytes.Buffer, error) {
	loc = orUTC(loc)
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPickup); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetHistorical); err != nil {
		return nil, err
	}
	b := &sheetBuilder{file: f}
	if err := b.init(); err != nil {
		return nil, err
	}

	sheets := []struct {
		name      string
		records   []report.Record
		analytics report.Snapshot
	}{
		{SheetPickup, bundle.Pickup, bundle.PickupAnalytics},
		{SheetHistorical, bundle.Historical, bundle.HistoricalAnalytics},
	}
	for _, sheet := range sheets {
		if err := b.setRow(sheet.name, 1, []any{bundle.Merchant.Name, bundle.Merchant.Code, bundle.Label}); err != nil {
			return nil, err
		}
		last, err := b.tableAt(sheet.name, 3, report.ShapeMerchant, report.MapRows(report.ShapeMerchant, sheet.records), loc)
		if err != nil {
			return nil, err
		}
		footer := []any{"TOTAL", sheet.analytics.Total, "", "", "", sheet.analytics.TotalCOD, sheet.analytics.TotalFees}
		if err := b.setRow(sheet.name, last+2, footer); err != nil {
			return nil, err
		}
		if err := b.bold(sheet.name, last+2, len(footer)); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f.WriteToBuffer()
}

type sheetBuilder struct {
	file      *excelize.File
	headStyle int
}

func (b *sheetBuilder) init() error {
	style, err := b.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0EBF5"}},
	})
	if err != nil {
		return err
	}
	b.headStyle = style
	return nil
}

func (b *sheetBuilder) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return b.file.SetSheetRow(sheet, cell, &values)
}

func (b *sheetBuilder) bold(sheet string, row int, width int) error {
	from, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return b.file.SetCellStyle(sheet, from, to, b.headStyle)
}

func (b *sheetBuilder) table(sheet string, shape report.Shape, rows []report.Row, loc *time.Location) (int, error) {
	return b.tableAt(sheet, 1, shape, rows, loc)
}

// tableAt writes a header at startRow followed by rows and returns the last row index written.
func (b *sheetBuilder) tableAt(sheet string, startRow int, shape report.Shape, rows []report.Row, loc *time.Location) (int, error) {
	cols := columnsFor(shape)
	header := make([]any, len(cols))
	for i, col := range cols {
		header[i] = col.header
	}
	if err := b.setRow(sheet, startRow, header); err != nil {
		return 0, err
	}
	if err := b.bold(sheet, startRow, len(cols)); err != nil {
		return 0, err
	}

	current := startRow
	for _, row := range rows {
		current++
		values := make([]any, len(cols))
		for i, col := range cols {
			values[i] = col.cell(row, loc)
		}
		if err := b.setRow(sheet, current, values); err != nil {
			return 0, err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return 0, err
	}
	if err := b.file.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return 0, err
	}
	return current, nil
}
