package domain

import "errors"

var (
	ErrNotFound                 = errors.New("resource not found")
	ErrInvoiceNotFound          = errors.New("invoice draft not found")
	ErrHistoryNotFound          = errors.New("invoice not found in history")
	ErrSmartFillNotConfigured   = errors.New("smart fill service has no usable credential")
	ErrSmartFillFailed          = errors.New("smart fill service call failed")
	ErrSmartFillRateLimited     = errors.New("smart fill service is rate limited")
	ErrSmartFillBusy            = errors.New("a smart fill request is already in progress")
	ErrEmptySmartFillText       = errors.New("smart fill text is empty")
	ErrInvalidPatch             = errors.New("smart fill response does not match expected format")
	ErrInvalidPaymentTransition = errors.New("invalid payment transition")
	ErrRenderFailed             = errors.New("invoice rendering failed")
	ErrUnsupportedExportFormat  = errors.New("unsupported export format")
	ErrInvalidItemField         = errors.New("invalid line item field")
)
