package export

import (
	"strconv"
	"time"

	"delivery-report-service/internal/report"

	"github.com/shopspring/decimal"
)

const timestampLayout = "2006-01-02 15:04:05"

type column struct {
	header string
	// text renders the cell for CSV; cell renders the typed spreadsheet value.
	text func(row report.Row, loc *time.Location) string
	cell func(row report.Row, loc *time.Location) any
}

func stringColumn(header string, get func(report.Row) string) column {
	return column{
		header: header,
		text:   func(row report.Row, _ *time.Location) string { return get(row) },
		cell:   func(row report.Row, _ *time.Location) any { return get(row) },
	}
}

func moneyColumn(header string, get func(report.Row) float64) column {
	return column{
		header: header,
		text:   func(row report.Row, _ *time.Location) string { return formatMoney(get(row)) },
		cell:   func(row report.Row, _ *time.Location) any { return get(row) },
	}
}

func timeColumn(header string, get func(report.Row) time.Time) column {
	render := func(row report.Row, loc *time.Location) string { return get(row).In(loc).Format(timestampLayout) }
	return column{
		header: header,
		text:   render,
		cell:   func(row report.Row, loc *time.Location) any { return render(row, loc) },
	}
}

func columnsFor(shape report.Shape) []column {
	cols := []column{
		{
			header: "ID",
			text:   func(row report.Row, _ *time.Location) string { return strconv.FormatInt(row.ID, 10) },
			cell:   func(row report.Row, _ *time.Location) any { return row.ID },
		},
		stringColumn("Tracking Number", func(r report.Row) string { return r.TrackingNumber }),
		stringColumn("Customer Name", func(r report.Row) string { return r.CustomerName }),
		stringColumn("Customer Phone", func(r report.Row) string { return r.CustomerPhone }),
		stringColumn("Customer Address", func(r report.Row) string { return r.CustomerAddress }),
		moneyColumn("COD Amount", func(r report.Row) float64 { return r.CODAmount }),
	}
	if shape == report.ShapeDriver {
		cols = append(cols,
			stringColumn("Status", func(r report.Row) string { return string(r.Status) }),
			stringColumn("Driver", func(r report.Row) string { return deref(r.CourierName) }),
			stringColumn("Merchant", func(r report.Row) string { return r.MerchantName }),
		)
	} else {
		cols = append(cols,
			moneyColumn("Delivery Fee", func(r report.Row) float64 {
				if r.DeliveryFee == nil {
					return 0
				}
				return *r.DeliveryFee
			}),
			stringColumn("Status", func(r report.Row) string { return string(r.Status) }),
			stringColumn("Merchant", func(r report.Row) string { return r.MerchantName }),
			stringColumn("Driver", func(r report.Row) string { return deref(r.CourierName) }),
		)
	}
	return append(cols,
		timeColumn("Created At", func(r report.Row) time.Time { return r.CreatedAt }),
		timeColumn("Updated At", func(r report.Row) time.Time { return r.UpdatedAt }),
	)
}

func formatMoney(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
