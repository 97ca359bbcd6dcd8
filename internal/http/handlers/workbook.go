package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"delivery-report-service/internal/archive"
	"delivery-report-service/internal/export"
	"delivery-report-service/internal/metrics"
	"delivery-report-service/internal/middleware"
	"delivery-report-service/internal/queue"
	"delivery-report-service/internal/report"
	"delivery-report-service/internal/storage"
	"delivery-report-service/pkg/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MerchantWorkbook serves the settlement bundle as xlsx, or as JSON with format=json.
func (h *Handler) MerchantWorkbook(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.buildWorkbook(w, r)
	if !ok {
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		metrics.WorkbookExports.WithLabelValues("json").Inc()
		response.Success(w, bundle)
		return
	}

	buffer, err := export.MerchantWorkbook(bundle, h.location())
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.WorkbookExports.WithLabelValues("xlsx").Inc()
	response.Attachment(w, xlsxContentType, workbookFilename(bundle, "xlsx"), buffer.Bytes())
}

func (h *Handler) MerchantWorkbookPDF(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.buildWorkbook(w, r)
	if !ok {
		return
	}

	buffer, err := export.SettlementPDF(bundle, h.location())
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.WorkbookExports.WithLabelValues("pdf").Inc()
	response.Attachment(w, "application/pdf", workbookFilename(bundle, "pdf"), buffer.Bytes())
}

func (h *Handler) buildWorkbook(w http.ResponseWriter, r *http.Request) (*report.WorkbookBundle, bool) {
	merchantID, err := readPathInt64(r, "merchantId")
	if err != nil || merchantID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "merchantId must be a positive number")
		return nil, false
	}

	query := r.URL.Query()
	bundle, err := h.Workbooks.Build(r.Context(), merchantID, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		h.writeReportError(w, r, err)
		return nil, false
	}
	return bundle, true
}

type archiveRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Format    string `json:"format"`
}

// ArchiveMerchantWorkbook stores a rendered workbook in object storage. With a queue the work is
// deferred to the archive worker and the job id is returned immediately. Both paths
// require an archiver.
func (h *Handler) ArchiveMerchantWorkbook(w http.ResponseWriter, r *http.Request) {
	merchantID, err := readPathInt64(r, "merchantId")
	if err != nil || merchantID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "merchantId must be a positive number")
		return
	}

	payload := archiveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	format, err := archive.NormalizeFormat(payload.Format)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	label, _, _, err := h.Workbooks.Windows(payload.StartDate, payload.EndDate)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	if h.Archiver == nil {
		response.Error(w, http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Object storage is not configured")
		return
	}

	// EndDate carries the request-time label.
	req := archive.Request{
		JobID:      uuid.NewString(),
		MerchantID: merchantID,
		StartDate:  payload.StartDate,
		EndDate:    label,
		Format:     format,
	}

	if h.Queue != nil {
		merchant, err := h.Workbooks.Store.FindMerchant(r.Context(), merchantID)
		if err != nil {
			h.writeReportError(w, r, fmt.Errorf("%w: %w", report.ErrStoreUnavailable, err))
			return
		}
		if merchant == nil {
			h.writeReportError(w, r, report.ErrMerchantNotFound)
			return
		}

		job := queue.WorkbookArchiveJob{Request: req}
		if authCtx, ok := middleware.GetAuthContext(r.Context()); ok {
			job.RequestedBy = authCtx.UserID
		}
		if err := queue.EnqueueWorkbookArchive(r.Context(), h.Queue, job); err != nil {
			h.Logger.Error("enqueue workbook archive failed", zap.Int64("merchantId", merchantID), zapError(err))
			response.Error(w, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "Failed to schedule archive")
			return
		}
		response.Accepted(w, map[string]any{"jobId": req.JobID, "status": "queued"})
		return
	}

	result, err := h.Archiver.Archive(r.Context(), req)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": result})
}

type archivedWorkbook struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (h *Handler) ListWorkbookArchives(w http.ResponseWriter, r *http.Request) {
	merchantID, err := readPathInt64(r, "merchantId")
	if err != nil || merchantID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "merchantId must be a positive number")
		return
	}
	if h.Archives == nil {
		response.Error(w, http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Object storage is not configured")
		return
	}

	keys, err := h.Archives.ListKeys(r.Context(), storage.WorkbookArchivePrefix(merchantID))
	if err != nil {
		h.Logger.Error("list workbook archives failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Failed to list archives")
		return
	}

	out := make([]archivedWorkbook, 0, len(keys))
	for _, key := range keys {
		link, err := h.Archives.PresignGetObject(r.Context(), key, h.Config.ArchiveLinkTTL)
		if err != nil {
			h.Logger.Warn("presign archive failed", zap.String("key", key), zapError(err))
			continue
		}
		out = append(out, archivedWorkbook{Key: key, URL: link})
	}
	response.Success(w, out)
}

func workbookFilename(bundle *report.WorkbookBundle, ext string) string {
	name := bundle.Merchant.Code
	if name == "" {
		name = fmt.Sprintf("%d", bundle.Merchant.ID)
	}
	return fmt.Sprintf("settlement_%s_%s.%s", name, bundle.Label, ext)
}
