package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"delivery-report-service/internal/cache"
	"delivery-report-service/internal/export"
	"delivery-report-service/internal/metrics"
	"delivery-report-service/internal/report"
	"delivery-report-service/pkg/response"
)

type reportResponse struct {
	Success bool `json:"success"`
	*report.Report
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, "")
}

func (h *Handler) DriverReports(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, report.ShapeDriver)
}

func (h *Handler) MerchantReports(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, report.ShapeMerchant)
}

func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, shape report.Shape) {
	filter, err := report.BuildFilter(r.URL.Query(), shape)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	result, err := h.Reports.Assemble(r.Context(), filter)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.ReportsGenerated.WithLabelValues(string(filter.Shape)).Inc()
	response.JSON(w, http.StatusOK, reportResponse{Success: true, Report: result})
}

func (h *Handler) DriverPerformance(w http.ResponseWriter, r *http.Request) {
	filter, err := report.BuildFilter(r.URL.Query(), report.ShapeDriver)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	key := cache.Key("driver-performance", cacheScope(r))
	rows, err := cache.Remember(r.Context(), h.Cache, h.Logger, key, h.Config.ReportCacheTTL, func() ([]report.DriverPerformance, error) {
		return h.Reports.DriverBreakdown(r.Context(), filter)
	})
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.ReportsGenerated.WithLabelValues("driver_performance").Inc()
	response.Success(w, rows)
}

func (h *Handler) MerchantPerformance(w http.ResponseWriter, r *http.Request) {
	filter, err := report.BuildFilter(r.URL.Query(), report.ShapeMerchant)
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}

	key := cache.Key("merchant-performance", cacheScope(r))
	rows, err := cache.Remember(r.Context(), h.Cache, h.Logger, key, h.Config.ReportCacheTTL, func() ([]report.MerchantPerformance, error) {
		return h.Reports.MerchantBreakdown(r.Context(), filter)
	})
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.ReportsGenerated.WithLabelValues("merchant_performance").Inc()
	response.Success(w, rows)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.exportReport(w, r)
	if !ok {
		return
	}

	buffer := &bytes.Buffer{}
	if err := export.WriteCSV(buffer, result, h.location()); err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.ReportsGenerated.WithLabelValues("export_csv").Inc()
	response.Attachment(w, "text/csv; charset=utf-8", h.exportFilename(result.Shape, "csv"), buffer.Bytes())
}

func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	result, ok := h.exportReport(w, r)
	if !ok {
		return
	}

	buffer, err := export.ReportWorkbook(result, h.location())
	if err != nil {
		h.writeReportError(w, r, err)
		return
	}
	metrics.ReportsGenerated.WithLabelValues("export_excel").Inc()
	response.Attachment(w, xlsxContentType, h.exportFilename(result.Shape, "xlsx"), buffer.Bytes())
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	filter, err := report.BuildFilter(r.URL.Query(), "")
	if err != nil {
		h.writeReportError(w, r, err)
		return nil, false
	}
	result, err := h.Reports.Export(r.Context(), filter)
	if err != nil {
		h.writeReportError(w, r, err)
		return nil, false
	}
	return result, true
}

func (h *Handler) exportFilename(shape report.Shape, ext string) string {
	return fmt.Sprintf("report_%s_%s.%s", shape, h.today(), ext)
}
