package httpapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"delivery-report-service/internal/archive"
	"delivery-report-service/internal/auth"
	"delivery-report-service/internal/cache"
	"delivery-report-service/internal/config"
	"delivery-report-service/internal/http/handlers"
	"delivery-report-service/internal/queue"
	"delivery-report-service/internal/report"
	"delivery-report-service/internal/report/reporttest"
	"delivery-report-service/internal/timewindow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "router-secret"

type fakePublisher struct {
	messageIDs []string
	payloads   []any
	err        error
}

func (f *fakePublisher) PublishJSON(_ context.Context, _, _, messageID string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.messageIDs = append(f.messageIDs, messageID)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeObjects struct {
	keys []string
}

func (f *fakeObjects) PutObject(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return "", nil
}

func (f *fakeObjects) ListKeys(_ context.Context, prefix string) ([]string, error) {
	out := []string{}
	for _, key := range f.keys {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (f *fakeObjects) PresignGetObject(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

type fixture struct {
	store   *reporttest.MemStore
	handler *handlers.Handler
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	resolver, err := timewindow.New("+07:00", "1900-01-01")
	require.NoError(t, err)
	resolver.Now = func() time.Time { return time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC) }

	store := reporttest.NewMemStore()
	store.AddMerchant(report.Merchant{ID: 1, Name: "Toko Satu", Code: "TS"})
	courier := int64(8)
	courierName := "Andi"
	today := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	store.AddRecords(
		report.Record{ID: 1, TrackingNumber: "TRK-1", CODAmount: 10, DeliveryFee: 2, Status: report.StatusDelivered, MerchantID: 1, CourierID: &courier, CourierName: &courierName, CreatedAt: today, UpdatedAt: today.Add(5 * time.Hour)},
		report.Record{ID: 2, TrackingNumber: "TRK-2", CODAmount: 20, DeliveryFee: 2, Status: report.StatusPending, MerchantID: 1, CreatedAt: today, UpdatedAt: today},
		report.Record{ID: 3, TrackingNumber: "TRK-3", CODAmount: 5, DeliveryFee: 2, Status: report.StatusCancelled, MerchantID: 1, CreatedAt: today.AddDate(0, 0, -5), UpdatedAt: today},
	)

	h := &handlers.Handler{
		Logger:    zap.NewNop(),
		Config:    config.Config{Env: "test", JWTSecret: secret, ReportCacheTTL: time.Minute, ArchiveLinkTTL: time.Minute},
		Reports:   report.NewAssembler(store),
		Workbooks: report.NewPartitioner(store, resolver),
		Cache:     cache.NewMemory(),
	}
	return &fixture{store: store, handler: h, router: NewRouter(h)}
}

func token(t *testing.T, role auth.UserRole, perms ...string) string {
	t.Helper()
	signed, err := auth.SignAccessToken(auth.Claims{UserID: "1", Role: role, Permissions: perms}, secret, time.Hour)
	require.NoError(t, err)
	return signed
}

func (f *fixture) do(t *testing.T, method, target, bearer string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/admin/reports", "", nil).Code)
}

func TestReportsEndpoint(t *testing.T) {
	f := newFixture(t)
	admin := token(t, auth.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/api/admin/reports?limit=2", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "merchant", body["reportType"])
	assert.Equal(t, 3.0, body["total"])
	assert.Equal(t, 1.0, body["page"])
	assert.Equal(t, 2.0, body["limit"])
	assert.Len(t, body["data"], 2)
	analytics := body["analytics"].(map[string]any)
	assert.Equal(t, 3.0, analytics["totalPackages"])
	assert.Equal(t, 35.0, analytics["totalCod"])

	rec = f.do(t, http.MethodGet, "/api/admin/reports/drivers", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "driver", body["reportType"])
	first := body["data"].([]any)[0].(map[string]any)
	assert.NotContains(t, first, "deliveryFee")
}

func TestReportErrors(t *testing.T) {
	f := newFixture(t)
	admin := token(t, auth.RoleAdmin)

	cases := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"bad date", "/api/admin/reports?startDate=15-06-2024", http.StatusBadRequest, "INVALID_DATE_FORMAT"},
		{"inverted range", "/api/admin/reports?startDate=2024-06-10&endDate=2024-06-01", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad limit", "/api/admin/reports?limit=0", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown merchant", "/api/admin/reports/merchants/99/workbook", http.StatusNotFound, "MERCHANT_NOT_FOUND"},
		{"bad merchant id", "/api/admin/reports/merchants/abc/workbook", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad workbook date", "/api/admin/reports/merchants/1/workbook?endDate=2024-6-1", http.StatusBadRequest, "INVALID_DATE_FORMAT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tc.target, admin, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode(t, rec)["error"])
		})
	}
}

func TestStoreFailureIsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.Err = errors.New("connection reset")

	rec := f.do(t, http.MethodGet, "/api/admin/reports", token(t, auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "STORE_UNAVAILABLE", decode(t, rec)["error"])
}

func TestPerformanceIsCached(t *testing.T) {
	f := newFixture(t)
	admin := token(t, auth.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/api/admin/reports/driver-performance", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode(t, rec)["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Andi", rows[0].(map[string]any)["driverName"])

	calls := f.store.FindCalls
	rec = f.do(t, http.MethodGet, "/api/admin/reports/driver-performance?page=2", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, calls, f.store.FindCalls)

	rec = f.do(t, http.MethodGet, "/api/admin/reports/merchant-performance", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)
}

func TestExports(t *testing.T) {
	f := newFixture(t)
	exporter := token(t, auth.RoleStaff, "reports", "reports_export")

	rec := f.do(t, http.MethodGet, "/api/admin/reports/export/csv?limit=1", exporter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_merchant_2024-06-15.csv")
	lines, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, lines, 4)

	rec = f.do(t, http.MethodGet, "/api/admin/reports/export/excel?reportType=driver", exporter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_driver_2024-06-15.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	reader := token(t, auth.RoleStaff, "reports")
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/admin/reports/export/csv", reader, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/admin/reports", reader, nil).Code)
}

func TestMerchantWorkbook(t *testing.T) {
	f := newFixture(t)
	admin := token(t, auth.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/api/admin/reports/merchants/1/workbook?format=json", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bundle := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "2024-06-15", bundle["label"])
	assert.Len(t, bundle["pickupRecords"], 2)
	assert.Len(t, bundle["historicalRecords"], 3)

	rec = f.do(t, http.MethodGet, "/api/admin/reports/merchants/1/workbook", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "settlement_TS_2024-06-15.xlsx")

	rec = f.do(t, http.MethodGet, "/api/admin/reports/merchants/1/workbook/pdf?endDate=2024-06-10", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "settlement_TS_2024-06-10.pdf")
}

func TestArchiveWorkbook(t *testing.T) {
	admin := token(t, auth.RoleAdmin)
	target := "/api/admin/reports/merchants/1/workbook/archive"

	t.Run("no object store", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, target, admin, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("synchronous", func(t *testing.T) {
		f := newFixture(t)
		objects := &fakeObjects{}
		f.handler.Archiver = archive.New(f.handler.Workbooks, objects)
		f.handler.Archives = objects

		rec := f.do(t, http.MethodPost, target, admin, []byte(`{"format":"pdf","endDate":"2024-06-14"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, objects.keys, 1)
		assert.True(t, strings.HasPrefix(objects.keys[0], "reports/merchants/1/2024-06-14/"))
		assert.True(t, strings.HasSuffix(objects.keys[0], ".pdf"))

		rec = f.do(t, http.MethodGet, "/api/admin/reports/merchants/1/workbook/archives", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		listed := decode(t, rec)["data"].([]any)
		require.Len(t, listed, 1)
		assert.Equal(t, "https://signed.example/"+objects.keys[0], listed[0].(map[string]any)["url"])
	})

	t.Run("queued", func(t *testing.T) {
		f := newFixture(t)
		pub := &fakePublisher{}
		f.handler.Queue = pub
		f.handler.Archiver = archive.New(f.handler.Workbooks, &fakeObjects{})

		rec := f.do(t, http.MethodPost, target, admin, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)
		data := decode(t, rec)["data"].(map[string]any)
		require.Len(t, pub.messageIDs, 1)
		assert.Equal(t, pub.messageIDs[0], data["jobId"])

		job, ok := pub.payloads[0].(queue.WorkbookArchiveJob)
		require.True(t, ok)
		assert.Equal(t, "2024-06-15", job.EndDate)
		assert.Equal(t, int64(1), job.MerchantID)

		rec = f.do(t, http.MethodPost, "/api/admin/reports/merchants/77/workbook/archive", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Len(t, pub.messageIDs, 1)
	})

	t.Run("queued label survives midnight", func(t *testing.T) {
		f := newFixture(t)
		pub := &fakePublisher{}
		f.handler.Queue = pub
		f.handler.Archiver = archive.New(f.handler.Workbooks, &fakeObjects{})
		f.handler.Workbooks.Resolver.Now = func() time.Time { return time.Date(2024, 6, 15, 16, 59, 0, 0, time.UTC) }

		rec := f.do(t, http.MethodPost, target, admin, []byte(`{"format":"pdf"}`))
		require.Equal(t, http.StatusAccepted, rec.Code)
		f.handler.Workbooks.Resolver.Now = func() time.Time { return time.Date(2024, 6, 15, 17, 1, 0, 0, time.UTC) }

		require.Len(t, pub.payloads, 1)
		job := pub.payloads[0].(queue.WorkbookArchiveJob)
		assert.Equal(t, "2024-06-15", job.EndDate)
		assert.Equal(t, "pdf", job.Format)
	})

	t.Run("queue without object store", func(t *testing.T) {
		f := newFixture(t)
		pub := &fakePublisher{}
		f.handler.Queue = pub

		rec := f.do(t, http.MethodPost, target, admin, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "ARCHIVE_UNAVAILABLE", decode(t, rec)["error"])
		assert.Empty(t, pub.messageIDs)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		f.handler.Queue = &fakePublisher{}

		rec := f.do(t, http.MethodPost, target, admin, []byte(`{"format":"docx"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = f.do(t, http.MethodPost, target, admin, []byte(`{"startDate":"yesterday"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_DATE_FORMAT", decode(t, rec)["error"])
		rec = f.do(t, http.MethodPost, target, admin, []byte(`{`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
