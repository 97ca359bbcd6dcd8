package db

import (
	"context"
	"errors"
	"time"

	"delivery-report-service/internal/metrics"
	"delivery-report-service/internal/report"
	"delivery-report-service/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReportStore reads delivery records for the reporting core.
type ReportStore struct {
	DB Querier
}

func NewReportStore(db Querier) *ReportStore {
	return &ReportStore{DB: db}
}

var _ report.Store = (*ReportStore)(nil)

func (s *ReportStore) FindRecords(ctx context.Context, q report.RecordQuery) ([]report.Record, error) {
	defer observe("find_records", time.Now())

	sql, args := buildRecordQuery(q, false)
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]report.Record, 0)
	for rows.Next() {
		var (
			codAmount   pgtype.Numeric
			deliveryFee pgtype.Numeric
			status      string
			driverID    pgtype.Int8
			driverName  pgtype.Text
		)
		record := report.Record{}
		if err := rows.Scan(&record.ID, &record.TrackingNumber, &codAmount, &deliveryFee, &status,
			&record.CustomerName, &record.CustomerPhone, &record.CustomerAddress,
			&record.MerchantID, &record.MerchantName, &driverID, &driverName,
			&record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		record.CODAmount = utils.NumericToFloat64(codAmount)
		record.DeliveryFee = utils.NumericToFloat64(deliveryFee)
		record.Status = report.Status(status)
		record.CreatedAt = record.CreatedAt.UTC()
		record.UpdatedAt = record.UpdatedAt.UTC()
		if driverID.Valid {
			id := driverID.Int64
			record.CourierID = &id
		}
		if driverName.Valid {
			name := driverName.String
			record.CourierName = &name
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ReportStore) CountRecords(ctx context.Context, q report.RecordQuery) (int64, error) {
	defer observe("count_records", time.Now())

	sql, args := buildRecordQuery(q, true)
	var total int64
	if err := s.DB.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *ReportStore) FindMerchant(ctx context.Context, id int64) (*report.Merchant, error) {
	defer observe("find_merchant", time.Now())

	var (
		merchant report.Merchant
		email    pgtype.Text
		phone    pgtype.Text
		address  pgtype.Text
	)
	err := s.DB.QueryRow(ctx, `
		select id, name, code, email, phone, address
		from merchants
		where id = $1
	`, id).Scan(&merchant.ID, &merchant.Name, &merchant.Code, &email, &phone, &address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	merchant.Email = textPtr(email)
	merchant.Phone = textPtr(phone)
	merchant.Address = textPtr(address)
	return &merchant, nil
}

func textPtr(value pgtype.Text) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func observe(op string, started time.Time) {
	metrics.StoreQueryTime.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
