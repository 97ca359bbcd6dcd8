package report

import (
	"context"

	"delivery-report-service/internal/timewindow"
)

// RecordQuery is the filter shape understood by a Store. Nil fields are not applied.
type RecordQuery struct {
	MerchantID *int64
	CourierID  *int64
	Search     string
	CreatedAt  *timewindow.Range
	Skip       int
	// Take 0 means no limit.
	Take int
}

// Store is the persistence port the reporting core reads from.
type Store interface {
	FindRecords(ctx context.Context, q RecordQuery) ([]Record, error)
	CountRecords(ctx context.Context, q RecordQuery) (int64, error)
	// FindMerchant returns nil, nil when the merchant does not exist.
	FindMerchant(ctx context.Context, id int64) (*Merchant, error)
}
