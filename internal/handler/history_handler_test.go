package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/handler"
	"smartinvoice/internal/port"
	"smartinvoice/internal/service"
	"smartinvoice/mocks"
)

func newHistoryHandler() (*handler.HistoryHandler, *mocks.MockHistoryService, *mocks.MockInvoiceService) {
	historySvc := new(mocks.MockHistoryService)
	invoiceSvc := new(mocks.MockInvoiceService)
	return handler.NewHistoryHandler(historySvc, invoiceSvc), historySvc, invoiceSvc
}

func TestHistoryHandler_List_RecentFirst(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	entries := []service.HistoryEntry{
		{Invoice: domain.InvoiceData{InvoiceNumber: "INDY0188"}},
		{Invoice: domain.InvoiceData{InvoiceNumber: "INDY0187"}},
	}
	historySvc.On("List", mock.Anything, true).Return(entries, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/history?order=recent", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, "recent", resp.Meta.Order)
	historySvc.AssertExpectations(t)
}

func TestHistoryHandler_List_StoredOrder(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("List", mock.Anything, false).Return([]service.HistoryEntry{}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/history", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stored", decodeResponse(t, w).Meta.Order)
}

func TestHistoryHandler_Get_NotFound(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("Get", mock.Anything, "INDY0999").Return(nil, domain.ErrHistoryNotFound)

	c, w := newTestContext(http.MethodGet, "/", nil, "number", "INDY0999")
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryHandler_Delete(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("Delete", mock.Anything, "INDY0187").Return(nil)

	c, w := newTestContext(http.MethodDelete, "/", nil, "number", "INDY0187")
	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	historySvc.AssertExpectations(t)
}

func TestHistoryHandler_Load(t *testing.T) {
	h, _, invoiceSvc := newHistoryHandler()
	invoiceSvc.On("LoadFromHistory", mock.Anything, "INDY0187").Return(sampleView("INDY0187"), nil)

	c, w := newTestContext(http.MethodPost, "/", nil, "number", "INDY0187")
	h.Load(c)

	assert.Equal(t, http.StatusOK, w.Code)
	invoiceSvc.AssertExpectations(t)
}

func TestHistoryHandler_Export(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("Export", mock.Anything, domain.ExportFormatXLSX).Return(&service.ExportResult{
		Filename:    "invoice-history_2026-10-19.xlsx",
		ContentType: domain.ExportContentTypes[domain.ExportFormatXLSX],
		Content:     []byte("PK"),
	}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/history/export?format=XLSX", nil)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoice-history_2026-10-19.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, domain.ExportContentTypes[domain.ExportFormatXLSX], w.Header().Get("Content-Type"))
}

func TestHistoryHandler_Export_DefaultsToCSV(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("Export", mock.Anything, domain.ExportFormatCSV).Return(&service.ExportResult{
		Filename: "h.csv", ContentType: "text/csv; charset=utf-8", Content: []byte("a,b"),
	}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/history/export", nil)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	historySvc.AssertExpectations(t)
}

func TestHistoryHandler_Export_Unsupported(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("Export", mock.Anything, domain.ExportFormat("ods")).Return(nil, domain.ErrUnsupportedExportFormat)

	c, w := newTestContext(http.MethodGet, "/api/v1/history/export?format=ods", nil)
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandler_DownloadPDF(t *testing.T) {
	h, historySvc, _ := newHistoryHandler()
	historySvc.On("DownloadPDF", mock.Anything, "INDY0187").Return(&service.PDFResult{
		Filename: "Invoice-INDY0187.pdf", Content: []byte("%PDF"),
	}, nil)

	c, w := newTestContext(http.MethodGet, "/", nil, "number", "INDY0187")
	h.DownloadPDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestHealthHandler_Readiness(t *testing.T) {
	healthy := new(mocks.MockHealthChecker)
	healthy.On("Ping", mock.Anything).Return(nil)
	h := handler.NewHealthHandler(map[string]port.HealthChecker{"redis": healthy})

	c, w := newTestContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	down := new(mocks.MockHealthChecker)
	down.On("Ping", mock.Anything).Return(errors.New("refused"))
	h = handler.NewHealthHandler(map[string]port.HealthChecker{"postgres": down})

	c, w = newTestContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "postgres not reachable")
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(nil)

	c, w := newTestContext(http.MethodGet, "/healthz", nil)
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
