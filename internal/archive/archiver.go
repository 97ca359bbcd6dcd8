package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-report-service/internal/export"
	"delivery-report-service/internal/metrics"
	"delivery-report-service/internal/report"
	"delivery-report-service/internal/storage"
)

const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported archive format")

// ObjectPutter is the part of storage.ObjectStore the archiver writes through.
type ObjectPutter interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Request struct {
	JobID      string `json:"jobId"`
	MerchantID int64  `json:"merchantId"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Format     string `json:"format"`
}

type Result struct {
	JobID      string `json:"jobId"`
	MerchantID int64  `json:"merchantId"`
	Label      string `json:"label"`
	Key        string `json:"key"`
	URL        string `json:"url,omitempty"`
	Format     string `json:"format"`
	Size       int    `json:"size"`
	Pickup     int    `json:"pickupCount"`
	Historical int    `json:"historicalCount"`
}

// Archiver renders a merchant workbook and stores it in object storage.
type Archiver struct {
	Partitioner *report.Partitioner
	Objects     ObjectPutter
	Location    *time.Location
}

func New(partitioner *report.Partitioner, objects ObjectPutter) *Archiver {
	return &Archiver{Partitioner: partitioner, Objects: objects, Location: partitioner.Resolver.Location}
}

func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "excel", FormatExcel:
		return FormatExcel, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (a *Archiver) Archive(ctx context.Context, req Request) (*Result, error) {
	format, err := NormalizeFormat(req.Format)
	if err != nil {
		return nil, err
	}

	bundle, err := a.Partitioner.Build(ctx, req.MerchantID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var (
		body        *bytes.Buffer
		contentType string
	)
	switch format {
	case FormatPDF:
		body, err = export.SettlementPDF(bundle, a.Location)
		contentType = "application/pdf"
	default:
		body, err = export.MerchantWorkbook(bundle, a.Location)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	key := storage.WorkbookArchiveKey(bundle.Merchant.ID, bundle.Label, req.JobID, format)
	url, err := a.Objects.PutObject(ctx, key, body.Bytes(), contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	metrics.WorkbookExports.WithLabelValues("archive_" + format).Inc()

	return &Result{
		JobID:      req.JobID,
		MerchantID: bundle.Merchant.ID,
		Label:      bundle.Label,
		Key:        key,
		URL:        url,
		Format:     format,
		Size:       body.Len(),
		Pickup:     len(bundle.Pickup),
		Historical: len(bundle.Historical),
	}, nil
}
