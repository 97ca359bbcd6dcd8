package report

import "time"

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusAssigned       Status = "ASSIGNED"
	StatusPickedUp       Status = "PICKED_UP"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusReturned       Status = "RETURNED"
	StatusFailed         Status = "FAILED"
)

// pendingLikeStatuses are the in-flight statuses counted together.
var pendingLikeStatuses = map[Status]struct{}{
	StatusPending:        {},
	StatusAssigned:       {},
	StatusPickedUp:       {},
	StatusInTransit:      {},
	StatusOutForDelivery: {},
}

func (s Status) PendingLike() bool {
	_, ok := pendingLikeStatuses[s]
	return ok
}

// Record is one delivery package as seen by the reporting core.
type Record struct {
	ID              int64     `json:"id"`
	TrackingNumber  string    `json:"trackingNumber"`
	CODAmount       float64   `json:"codAmount"`
	DeliveryFee     float64   `json:"deliveryFee"`
	Status          Status    `json:"status"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CustomerAddress string    `json:"customerAddress"`
	MerchantID      int64     `json:"merchantId"`
	MerchantName    string    `json:"merchantName"`
	CourierID       *int64    `json:"courierId"`
	CourierName     *string   `json:"courierName"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Merchant struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Code    string  `json:"code"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// WorkbookBundle is the two-sheet settlement snapshot of one merchant.
type WorkbookBundle struct {
	Merchant            Merchant `json:"merchant"`
	Label               string   `json:"label"`
	Pickup              []Record `json:"pickupRecords"`
	Historical          []Record `json:"historicalRecords"`
	PickupAnalytics     Snapshot `json:"pickupAnalytics"`
	HistoricalAnalytics Snapshot `json:"historicalAnalytics"`
}
