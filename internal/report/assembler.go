package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Row is one record projected into a report shape. Fields left empty by the
// shape are omitted from the JSON output.
type Row struct {
	ID              int64     `json:"id"`
	TrackingNumber  string    `json:"trackingNumber"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CustomerAddress string    `json:"customerAddress"`
	CODAmount       float64   `json:"codAmount"`
	DeliveryFee     *float64  `json:"deliveryFee,omitempty"`
	Status          Status    `json:"status"`
	MerchantID      *int64    `json:"merchantId,omitempty"`
	MerchantName    string    `json:"merchantName,omitempty"`
	CourierID       *int64    `json:"courierId,omitempty"`
	CourierName     *string   `json:"courierName,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Report struct {
	Shape     Shape    `json:"reportType"`
	Data      []Row    `json:"data"`
	Analytics Snapshot `json:"analytics"`
	Total     int64    `json:"total"`
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
}

// Assembler produces paginated reports whose analytics cover the whole filtered population.
type Assembler struct {
	Store Store
}

func NewAssembler(store Store) *Assembler {
	return &Assembler{Store: store}
}

func (a *Assembler) Assemble(ctx context.Context, filter Filter) (*Report, error) {
	var (
		page  []Record
		all   []Record
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := a.Store.FindRecords(gctx, filter.Query())
		if err != nil {
			return storeError("report page", err)
		}
		page = records
		return nil
	})
	g.Go(func() error {
		records, err := a.Store.FindRecords(gctx, filter.AllQuery())
		if err != nil {
			return storeError("report analytics set", err)
		}
		all = records
		return nil
	})
	g.Go(func() error {
		count, err := a.Store.CountRecords(gctx, filter.AllQuery())
		if err != nil {
			return storeError("report count", err)
		}
		total = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		Shape:     filter.Shape,
		Data:      MapRows(filter.Shape, page),
		Analytics: Aggregate(all),
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}, nil
}

// Export returns every matching row in a single page.
func (a *Assembler) Export(ctx context.Context, filter Filter) (*Report, error) {
	records, err := a.Store.FindRecords(ctx, filter.AllQuery())
	if err != nil {
		return nil, storeError("report export", err)
	}
	return &Report{
		Shape:     filter.Shape,
		Data:      MapRows(filter.Shape, records),
		Analytics: Aggregate(records),
		Total:     int64(len(records)),
		Page:      1,
		Limit:     len(records),
	}, nil
}

func MapRows(shape Shape, records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, MapRow(shape, record))
	}
	return rows
}

func MapRow(shape Shape, record Record) Row {
	row := Row{
		ID:              record.ID,
		TrackingNumber:  record.TrackingNumber,
		CustomerName:    record.CustomerName,
		CustomerPhone:   record.CustomerPhone,
		CustomerAddress: record.CustomerAddress,
		CODAmount:       record.CODAmount,
		Status:          record.Status,
		MerchantName:    record.MerchantName,
		CourierName:     record.CourierName,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}

	switch shape {
	case ShapeDriver:
		row.CourierID = record.CourierID
	default:
		fee := record.DeliveryFee
		merchantID := record.MerchantID
		row.DeliveryFee = &fee
		row.MerchantID = &merchantID
	}
	return row
}
