package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/smartfill"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *ListMeta   `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListMeta describes a list response.
type ListMeta struct {
	Total int    `json:"total"`
	Order string `json:"order"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondList sends a 200 success response with list metadata.
func RespondList(c *gin.Context, data interface{}, meta ListMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondAttachment sends raw bytes as a file download.
func RespondAttachment(c *gin.Context, filename, contentType string, content []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrSmartFillRateLimited):
		return http.StatusTooManyRequests, "SMART_FILL_RATE_LIMITED", "smart fill provider is rate limited; try again later"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice draft not found"
	case errors.Is(err, domain.ErrHistoryNotFound):
		return http.StatusNotFound, "HISTORY_NOT_FOUND", "invoice not found in history"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrSmartFillNotConfigured):
		return http.StatusServiceUnavailable, "SMART_FILL_NOT_CONFIGURED", "smart fill is not configured; set an API key"
	case errors.Is(err, domain.ErrSmartFillBusy):
		return http.StatusConflict, "SMART_FILL_BUSY", "a smart fill request is already in progress for this invoice"
	case errors.Is(err, domain.ErrEmptySmartFillText):
		return http.StatusBadRequest, "EMPTY_SMART_FILL_TEXT", "text is required"
	case errors.Is(err, domain.ErrSmartFillFailed):
		return http.StatusBadGateway, "SMART_FILL_FAILED", "failed to process smart fill request"
	case errors.Is(err, domain.ErrInvalidPaymentTransition):
		return http.StatusConflict, "INVALID_PAYMENT_TRANSITION", "payment action not allowed in the current state"
	case errors.Is(err, domain.ErrUnsupportedExportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrInvalidItemField):
		return http.StatusBadRequest, "INVALID_ITEM_FIELD", "invalid line item field"
	case errors.Is(err, domain.ErrRenderFailed):
		return http.StatusInternalServerError, "RENDER_FAILED", "failed to render invoice pdf"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Server-side errors are attached to the context for the request logger.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		_ = c.Error(err)
	}
	var rl *smartfill.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfterSeconds()))
	}
	RespondError(c, status, code, msg)
}
