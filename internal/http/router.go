package httpapi

import (
	"net/http"

	"delivery-report-service/internal/auth"
	"delivery-report-service/internal/http/handlers"
	"delivery-report-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *handlers.Handler) http.Handler {
	cfg := h.Config
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(h.Logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
				"Cache-Control",
			},
			ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin/reports", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermReports))
			r.Get("/", h.ListReports)
			r.Get("/drivers", h.DriverReports)
			r.Get("/merchants", h.MerchantReports)
			r.Get("/driver-performance", h.DriverPerformance)
			r.Get("/merchant-performance", h.MerchantPerformance)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermReportsExport))
			r.Get("/export/csv", h.ExportCSV)
			r.Get("/export/excel", h.ExportExcel)
			r.Get("/merchants/{merchantId}/workbook", h.MerchantWorkbook)
			r.Get("/merchants/{merchantId}/workbook/pdf", h.MerchantWorkbookPDF)
			r.Post("/merchants/{merchantId}/workbook/archive", h.ArchiveMerchantWorkbook)
			r.Get("/merchants/{merchantId}/workbook/archives", h.ListWorkbookArchives)
		})
	})

	return r
}
