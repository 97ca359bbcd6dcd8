package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"delivery-report-service/internal/archive"
	"delivery-report-service/internal/metrics"
	"delivery-report-service/internal/report"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ReportJobsExchange = "delivery.report_jobs"
	WorkbookQueue      = "delivery.report_jobs.workbook_archive"
	WorkbookDLQ        = "delivery.report_jobs.workbook_archive.dlq"
	WorkbookRK         = "workbook.archive"
	WorkbookDeadRK     = "workbook.dead"
)

type WorkbookArchiveJob struct {
	archive.Request
	RequestedBy int64     `json:"requestedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// topologyClient is satisfied by *Client.
type topologyClient interface {
	EnsureExchangeKind(name string, kind string) error
	EnsureQueueWithArgs(name string, args amqp.Table) (amqp.Queue, error)
	BindQueue(queueName, exchange, routingKey string) error
}

func EnsureWorkbookArchiveTopology(qc topologyClient) error {
	if err := qc.EnsureExchangeKind(ReportJobsExchange, "direct"); err != nil {
		return err
	}

	if _, err := qc.EnsureQueueWithArgs(WorkbookDLQ, nil); err != nil {
		return err
	}
	if err := qc.BindQueue(WorkbookDLQ, ReportJobsExchange, WorkbookDeadRK); err != nil {
		return err
	}

	_, err := qc.EnsureQueueWithArgs(WorkbookQueue, amqp.Table{
		"x-dead-letter-exchange":    ReportJobsExchange,
		"x-dead-letter-routing-key": WorkbookDeadRK,
	})
	if err != nil {
		return err
	}
	return qc.BindQueue(WorkbookQueue, ReportJobsExchange, WorkbookRK)
}

func EnqueueWorkbookArchive(ctx context.Context, pub Publisher, job WorkbookArchiveJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	return pub.PublishJSON(ctx, ReportJobsExchange, WorkbookRK, job.JobID, job)
}

// WorkbookArchiveHandler returns the consumer callback for workbook archive jobs.
// Malformed jobs and requests that can never succeed are marked permanent.
func WorkbookArchiveHandler(archiver *archive.Archiver, log *zap.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var job WorkbookArchiveJob
		if err := json.Unmarshal(body, &job); err != nil {
			metrics.ExportJobs.WithLabelValues("malformed").Inc()
			return fmt.Errorf("%w: decode job: %w", ErrPermanent, err)
		}

		result, err := archiver.Archive(ctx, job.Request)
		if err != nil {
			log.Warn("workbook archive failed",
				zap.String("jobId", job.JobID),
				zap.Int64("merchantId", job.MerchantID),
				zap.Error(err),
			)
			if isPermanent(err) {
				metrics.ExportJobs.WithLabelValues("rejected").Inc()
				return fmt.Errorf("%w: %w", ErrPermanent, err)
			}
			metrics.ExportJobs.WithLabelValues("retry").Inc()
			return err
		}

		metrics.ExportJobs.WithLabelValues("done").Inc()
		log.Info("workbook archived",
			zap.String("jobId", job.JobID),
			zap.Int64("merchantId", result.MerchantID),
			zap.String("key", result.Key),
			zap.Int("size", result.Size),
		)
		return nil
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, report.ErrMerchantNotFound) ||
		errors.Is(err, report.ErrInvalidDateFormat) ||
		errors.Is(err, archive.ErrUnsupportedFormat)
}
