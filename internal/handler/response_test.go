package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/handler"
	"smartinvoice/internal/smartfill"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{domain.ErrHistoryNotFound, http.StatusNotFound, "HISTORY_NOT_FOUND"},
		{domain.ErrSmartFillNotConfigured, http.StatusServiceUnavailable, "SMART_FILL_NOT_CONFIGURED"},
		{domain.ErrSmartFillBusy, http.StatusConflict, "SMART_FILL_BUSY"},
		{domain.ErrEmptySmartFillText, http.StatusBadRequest, "EMPTY_SMART_FILL_TEXT"},
		{fmt.Errorf("%w: %w", domain.ErrSmartFillFailed, domain.ErrInvalidPatch), http.StatusBadGateway, "SMART_FILL_FAILED"},
		{smartfill.NewRateLimitError("all", errors.New("429"), 10*time.Second), http.StatusTooManyRequests, "SMART_FILL_RATE_LIMITED"},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidPaymentTransition), http.StatusConflict, "INVALID_PAYMENT_TRANSITION"},
		{domain.ErrUnsupportedExportFormat, http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT"},
		{domain.ErrRenderFailed, http.StatusInternalServerError, "RENDER_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestHandleError_RateLimitSetsRetryAfter(t *testing.T) {
	c, w := newTestContext(http.MethodPost, "/", nil)

	handler.HandleError(c, smartfill.NewRateLimitError("gemini", errors.New("429"), 41500*time.Millisecond))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "SMART_FILL_RATE_LIMITED", resp.Error.Code)
}

func TestHandleError_AttachesServerErrors(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", nil)

	handler.HandleError(c, errors.New("db exploded"))

	assert.Len(t, c.Errors, 1)
}

func TestHandleError_ClientErrorsNotAttached(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", nil)

	handler.HandleError(c, domain.ErrInvoiceNotFound)

	assert.Empty(t, c.Errors)
}
