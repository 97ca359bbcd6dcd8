package report

import (
	"context"
	"fmt"
	"strings"

	"delivery-report-service/internal/timewindow"

	"golang.org/x/sync/errgroup"
)

// Partitioner builds merchant settlement workbooks.
type Partitioner struct {
	Store    Store
	Resolver *timewindow.Resolver
}

func NewPartitioner(store Store, resolver *timewindow.Resolver) *Partitioner {
	return &Partitioner{Store: store, Resolver: resolver}
}

// Windows returns the label date and the pickup and historical windows for the
// optional start/end civil dates.
func (p *Partitioner) Windows(startDate string, endDate string) (string, timewindow.Range, timewindow.Range, error) {
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)

	label := endDate
	if label == "" {
		label = p.Resolver.Today()
	}

	pickup, err := p.Resolver.Day(label)
	if err != nil {
		return "", timewindow.Range{}, timewindow.Range{}, err
	}

	lower := p.Resolver.Floor
	if startDate != "" {
		if lower, err = p.Resolver.StartOfDay(startDate); err != nil {
			return "", timewindow.Range{}, timewindow.Range{}, err
		}
	}
	upper := *pickup.To
	historical := timewindow.Range{From: &lower, To: &upper}
	return label, pickup, historical, nil
}

// Build returns the pickup sheet (label date only) and the historical sheet
// (lower bound through the label date) for one merchant.
func (p *Partitioner) Build(ctx context.Context, merchantID int64, startDate string, endDate string) (*WorkbookBundle, error) {
	label, pickupWindow, historicalWindow, err := p.Windows(startDate, endDate)
	if err != nil {
		return nil, err
	}

	merchant, err := p.Store.FindMerchant(ctx, merchantID)
	if err != nil {
		return nil, storeError("find merchant", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("%w: id %d", ErrMerchantNotFound, merchantID)
	}

	var pickup, historical []Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := p.Store.FindRecords(gctx, RecordQuery{MerchantID: &merchant.ID, CreatedAt: &pickupWindow})
		if err != nil {
			return storeError("pickup records", err)
		}
		pickup = records
		return nil
	})
	g.Go(func() error {
		records, err := p.Store.FindRecords(gctx, RecordQuery{MerchantID: &merchant.ID, CreatedAt: &historicalWindow})
		if err != nil {
			return storeError("historical records", err)
		}
		historical = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if pickup == nil {
		pickup = []Record{}
	}
	if historical == nil {
		historical = []Record{}
	}
	return &WorkbookBundle{
		Merchant:            *merchant,
		Label:               label,
		Pickup:              pickup,
		Historical:          historical,
		PickupAnalytics:     Aggregate(pickup),
		HistoricalAnalytics: Aggregate(historical),
	}, nil
}
