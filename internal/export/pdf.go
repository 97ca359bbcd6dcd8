package export

import (
	"bytes"
	"fmt"
	"time"

	"delivery-report-service/internal/report"

	"github.com/phpdave11/gofpdf"
)

// SettlementPDF renders the merchant settlement statement: header, per-sheet
// analytics and the pickup manifest.
func SettlementPDF(bundle *report.WorkbookBundle, loc *time.Location) (*bytes.Buffer, error) {
	loc = orUTC(loc)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, bundle.Merchant.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if bundle.Merchant.Code != "" {
		pdf.CellFormat(0, 5, bundle.Merchant.Code, "", 1, "C", false, 0, "")
	}
	if address := deref(bundle.Merchant.Address); address != "" {
		pdf.MultiCell(0, 4, address, "", "C", false)
	}
	if phone := deref(bundle.Merchant.Phone); phone != "" {
		pdf.CellFormat(0, 5, phone, "", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Settlement %s", bundle.Label), "", 1, "C", false, 0, "")

	writeSnapshot(pdf, "Pickup", bundle.PickupAnalytics)
	writeSnapshot(pdf, "Historical", bundle.HistoricalAnalytics)

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Pickup manifest", "B", 1, "L", false, 0, "")

	widths := []float64{38, 46, 30, 26, 46}
	pdf.SetFont("Arial", "B", 8)
	for i, title := range []string{"Tracking", "Customer", "COD", "Status", "Created"} {
		pdf.CellFormat(widths[i], 6, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	if len(bundle.Pickup) == 0 {
		pdf.CellFormat(0, 6, "No packages for this date", "1", 1, "C", false, 0, "")
	}
	for _, record := range bundle.Pickup {
		pdf.CellFormat(widths[0], 5, record.TrackingNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 5, record.CustomerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 5, formatMoney(record.CODAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 5, string(record.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 5, record.CreatedAt.In(loc).Format(timestampLayout), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(widths[0]+widths[1], 6, "TOTAL", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[2], 6, formatMoney(bundle.PickupAnalytics.TotalCOD), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3]+widths[4], 6, fmt.Sprintf("%d packages", bundle.PickupAnalytics.Total), "1", 1, "L", false, 0, "")

	buffer := &bytes.Buffer{}
	if err := pdf.Output(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func writeSnapshot(pdf *gofpdf.Fpdf, title string, snapshot report.Snapshot) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Packages: %d", snapshot.Total), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("COD: %s", formatMoney(snapshot.TotalCOD)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Delivery fees: %s", formatMoney(snapshot.TotalFees)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Delivered %d / Pending %d / Cancelled %d / Returned %d",
		snapshot.Delivered, snapshot.PendingLike, snapshot.Cancelled, snapshot.Returned), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Delivery rate: %.2f%%", snapshot.DeliveryRate), "", 1, "L", false, 0, "")
}
