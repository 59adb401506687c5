package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/service"
)

// HistoryHandler handles committed-invoice endpoints.
type HistoryHandler struct {
	historyService service.HistoryService
	invoiceService service.InvoiceService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService, invoiceService service.InvoiceService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, invoiceService: invoiceService}
}

// List handles GET /api/v1/history
// ?order=recent returns newest first; anything else keeps stored order.
func (h *HistoryHandler) List(c *gin.Context) {
	order := "stored"
	recentFirst := c.Query("order") == "recent"
	if recentFirst {
		order = "recent"
	}

	entries, err := h.historyService.List(c.Request.Context(), recentFirst)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, entries, ListMeta{Total: len(entries), Order: order})
}

// Get handles GET /api/v1/history/:number
func (h *HistoryHandler) Get(c *gin.Context) {
	entry, err := h.historyService.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, entry)
}

// Delete handles DELETE /api/v1/history/:number
func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.historyService.Delete(c.Request.Context(), c.Param("number")); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "invoice removed from history"})
}

// Load handles POST /api/v1/history/:number/load
// The committed copy replaces the draft with the same number.
func (h *HistoryHandler) Load(c *gin.Context) {
	view, err := h.invoiceService.LoadFromHistory(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Export handles GET /api/v1/history/export?format=csv|xlsx
// @Summary Export invoice history
// @Tags history
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} binary
// @Failure 400 {object} APIResponse "Unsupported format"
// @Router /history/export [get]
func (h *HistoryHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportFormatCSV))))

	res, err := h.historyService.Export(c.Request.Context(), format)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAttachment(c, res.Filename, res.ContentType, res.Content)
}

// DownloadPDF handles GET /api/v1/history/:number/pdf
func (h *HistoryHandler) DownloadPDF(c *gin.Context) {
	res, err := h.historyService.DownloadPDF(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAttachment(c, res.Filename, "application/pdf", res.Content)
}
