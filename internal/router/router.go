package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smartinvoice/internal/handler"
	"smartinvoice/internal/metrics"
	"smartinvoice/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log logrus.FieldLogger,
	corsOrigins []string,
	invoiceH *handler.InvoiceHandler,
	historyH *handler.HistoryHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.Metrics())

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")

	// Draft editing
	invoices := v1.Group("/invoices")
	invoices.POST("", invoiceH.Create)
	invoices.GET("/:number", invoiceH.Get)
	invoices.PUT("/:number", invoiceH.Update)
	invoices.POST("/:number/items", invoiceH.AddItem)
	invoices.PUT("/:number/items/:itemId", invoiceH.UpdateItem)
	invoices.PUT("/:number/items/:itemId/total", invoiceH.UpdateItemTotal)
	invoices.DELETE("/:number/items/:itemId", invoiceH.RemoveItem)
	invoices.POST("/:number/smart-fill", invoiceH.SmartFill)
	invoices.POST("/:number/payment", invoiceH.SubmitPayment)
	invoices.POST("/:number/payment/confirm", invoiceH.ConfirmPayment)
	invoices.POST("/:number/payment/cancel", invoiceH.CancelPayment)
	invoices.POST("/:number/pdf", invoiceH.DownloadPDF)

	// Committed history
	history := v1.Group("/history")
	history.GET("", historyH.List)
	history.GET("/export", historyH.Export)
	history.GET("/:number", historyH.Get)
	history.DELETE("/:number", historyH.Delete)
	history.POST("/:number/load", historyH.Load)
	history.GET("/:number/pdf", historyH.DownloadPDF)

	return r
}
