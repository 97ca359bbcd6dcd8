package handlers

import (
	"context"
	"time"

	"delivery-report-service/internal/archive"
	"delivery-report-service/internal/cache"
	"delivery-report-service/internal/config"
	"delivery-report-service/internal/queue"
	"delivery-report-service/internal/report"

	"go.uber.org/zap"
)

// ArchiveBrowser lists and links previously archived workbooks.
type ArchiveBrowser interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Handler carries the report services. Archiver, Archives, Queue and Cache are optional.
type Handler struct {
	Logger    *zap.Logger
	Config    config.Config
	Reports   *report.Assembler
	Workbooks *report.Partitioner
	Archiver  *archive.Archiver
	Archives  ArchiveBrowser
	Queue     queue.Publisher
	Cache     cache.Cache
}

func (h *Handler) location() *time.Location {
	if h.Workbooks != nil && h.Workbooks.Resolver != nil {
		return h.Workbooks.Resolver.Location
	}
	return time.UTC
}

func (h *Handler) today() string {
	if h.Workbooks != nil && h.Workbooks.Resolver != nil {
		return h.Workbooks.Resolver.Today()
	}
	return time.Now().UTC().Format("2006-01-02")
}
