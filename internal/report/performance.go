package report

import (
	"context"
	"sort"
)

type DriverPerformance struct {
	CourierID   int64    `json:"driverId"`
	CourierName string   `json:"driverName"`
	Analytics   Snapshot `json:"analytics"`
}

type MerchantPerformance struct {
	MerchantID   int64    `json:"merchantId"`
	MerchantName string   `json:"merchantName"`
	Analytics    Snapshot `json:"analytics"`
}

// DriverBreakdown breaks the filtered population down per assigned courier.
// Unassigned records are left out.
func (a *Assembler) DriverBreakdown(ctx context.Context, filter Filter) ([]DriverPerformance, error) {
	records, err := a.Store.FindRecords(ctx, filter.AllQuery())
	if err != nil {
		return nil, storeError("driver performance", err)
	}

	groups := make(map[int64][]Record)
	names := make(map[int64]string)
	for _, record := range records {
		if record.CourierID == nil {
			continue
		}
		id := *record.CourierID
		groups[id] = append(groups[id], record)
		if record.CourierName != nil {
			names[id] = *record.CourierName
		}
	}

	out := make([]DriverPerformance, 0, len(groups))
	for id, group := range groups {
		out = append(out, DriverPerformance{CourierID: id, CourierName: names[id], Analytics: Aggregate(group)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Analytics.Total == out[j].Analytics.Total {
			return out[i].CourierID < out[j].CourierID
		}
		return out[i].Analytics.Total > out[j].Analytics.Total
	})
	return out, nil
}

func (a *Assembler) MerchantBreakdown(ctx context.Context, filter Filter) ([]MerchantPerformance, error) {
	records, err := a.Store.FindRecords(ctx, filter.AllQuery())
	if err != nil {
		return nil, storeError("merchant performance", err)
	}

	groups := make(map[int64][]Record)
	names := make(map[int64]string)
	for _, record := range records {
		groups[record.MerchantID] = append(groups[record.MerchantID], record)
		names[record.MerchantID] = record.MerchantName
	}

	out := make([]MerchantPerformance, 0, len(groups))
	for id, group := range groups {
		out = append(out, MerchantPerformance{MerchantID: id, MerchantName: names[id], Analytics: Aggregate(group)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Analytics.Total == out[j].Analytics.Total {
			return out[i].MerchantID < out[j].MerchantID
		}
		return out[i].Analytics.Total > out[j].Analytics.Total
	})
	return out, nil
}
