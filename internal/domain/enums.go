package domain

// PaymentState tracks a draft through the simulated payment flow.
type PaymentState string

const (
	PaymentDrafting        PaymentState = "drafting"
	PaymentAwaitingPayment PaymentState = "awaiting_payment"
	PaymentPaid            PaymentState = "paid"
)

// ExportFormat selects the history export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportContentTypes maps an export format to its MIME type.
var ExportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// StoreDriver names a history/sequence persistence backend.
type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StoreRedis    StoreDriver = "redis"
	StorePostgres StoreDriver = "postgres"
)
