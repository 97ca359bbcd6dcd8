package report

import (
	"github.com/shopspring/decimal"
)

// Snapshot is the aggregate view over whatever record set is in hand.
type Snapshot struct {
	Total                int64    `json:"totalPackages"`
	TotalCOD             float64  `json:"totalCod"`
	TotalFees            float64  `json:"totalDeliveryFees"`
	Delivered            int64    `json:"delivered"`
	PendingLike          int64    `json:"pending"`
	Cancelled            int64    `json:"cancelled"`
	Returned             int64    `json:"returned"`
	DeliveryRate         float64  `json:"deliveryRate"`
	AverageDeliveryHours *float64 `json:"averageDeliveryHours,omitempty"`
}

func Aggregate(records []Record) Snapshot {
	summary := Snapshot{}
	cod := decimal.Zero
	fees := decimal.Zero
	deliveredHours := decimal.Zero

	for _, record := range records {
		summary.Total++
		cod = cod.Add(decimal.NewFromFloat(record.CODAmount))
		fees = fees.Add(decimal.NewFromFloat(record.DeliveryFee))

		switch {
		case record.Status == StatusDelivered:
			summary.Delivered++
			hours := record.UpdatedAt.Sub(record.CreatedAt).Hours()
			deliveredHours = deliveredHours.Add(decimal.NewFromFloat(hours))
		case record.Status == StatusCancelled:
			summary.Cancelled++
		case record.Status == StatusReturned:
			summary.Returned++
		case record.Status.PendingLike():
			summary.PendingLike++
		}
	}

	summary.TotalCOD = cod.InexactFloat64()
	summary.TotalFees = fees.InexactFloat64()
	if summary.Total > 0 {
		summary.DeliveryRate = round2(float64(summary.Delivered) / float64(summary.Total) * 100)
	}
	if summary.Delivered > 0 {
		avg := deliveredHours.Div(decimal.NewFromInt(summary.Delivered)).Round(2).InexactFloat64()
		summary.AverageDeliveryHours = &avg
	}
	return summary
}

func round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
