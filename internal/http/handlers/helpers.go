package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"delivery-report-service/internal/archive"
	"delivery-report-service/internal/report"
	"delivery-report-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func zapError(err error) zap.Field {
	return zap.Error(err)
}

var errMissingParam = errors.New("missing param")

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := strings.TrimSpace(chi.URLParam(r, key))
	if value == "" {
		return 0, errMissingParam
	}
	return strconv.ParseInt(value, 10, 64)
}

// writeReportError maps core errors onto the API error codes. Unknown errors are logged.
func (h *Handler) writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidDateFormat):
		response.Error(w, http.StatusBadRequest, "INVALID_DATE_FORMAT", err.Error())
	case errors.Is(err, report.ErrInvalidFilter), errors.Is(err, archive.ErrUnsupportedFormat):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, report.ErrMerchantNotFound):
		response.Error(w, http.StatusNotFound, "MERCHANT_NOT_FOUND", "Merchant not found")
	case errors.Is(err, report.ErrStoreUnavailable):
		h.Logger.Error("report store unavailable", zap.String("path", r.URL.Path), zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Report data is temporarily unavailable")
	default:
		h.Logger.Error("report request failed", zap.String("path", r.URL.Path), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
	}
}

// cacheScope drops paging parameters so every page of a breakdown shares one entry.
func cacheScope(r *http.Request) string {
	values := r.URL.Query()
	values.Del("page")
	values.Del("limit")
	return values.Encode()
}
