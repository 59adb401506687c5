package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartinvoice/internal/invoice"
	"smartinvoice/internal/service"
)

// InvoiceHandler handles invoice draft endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles POST /api/v1/invoices
// @Summary Start a new invoice draft
// @Description Allocates the next invoice number and returns a draft seeded with the seller defaults.
// @Tags invoices
// @Produce json
// @Success 201 {object} APIResponse{data=service.InvoiceView}
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	view, err := h.invoiceService.Create(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, view)
}

// Get handles GET /api/v1/invoices/:number
func (h *InvoiceHandler) Get(c *gin.Context) {
	view, err := h.invoiceService.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Update handles PUT /api/v1/invoices/:number
// Only the fields present in the body are changed.
func (h *InvoiceHandler) Update(c *gin.Context) {
	var req invoice.FieldPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	view, err := h.invoiceService.Update(c.Request.Context(), c.Param("number"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// AddItem handles POST /api/v1/invoices/:number/items
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	view, err := h.invoiceService.AddItem(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, view)
}

// UpdateItem handles PUT /api/v1/invoices/:number/items/:itemId
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	var req invoice.ItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	view, err := h.invoiceService.UpdateItem(c.Request.Context(), c.Param("number"), c.Param("itemId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// UpdateItemTotal handles PUT /api/v1/invoices/:number/items/:itemId/total
// The body carries the tax-inclusive line total; the exclusive rate is derived.
func (h *InvoiceHandler) UpdateItemTotal(c *gin.Context) {
	var req struct {
		Total *float64 `json:"total" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "total is required")
		return
	}

	view, err := h.invoiceService.UpdateItemTotal(c.Request.Context(), c.Param("number"), c.Param("itemId"), *req.Total)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// RemoveItem handles DELETE /api/v1/invoices/:number/items/:itemId
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	view, err := h.invoiceService.RemoveItem(c.Request.Context(), c.Param("number"), c.Param("itemId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// SmartFill handles POST /api/v1/invoices/:number/smart-fill
// @Summary Fill an invoice from free-form text
// @Description Sends the text to the configured language model and merges the extracted client details, items and actions into the draft.
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Text to extract from"
// @Success 200 {object} APIResponse{data=service.InvoiceView}
// @Failure 409 {object} APIResponse "Another smart fill is in progress"
// @Failure 429 {object} APIResponse "Provider rate limited"
// @Failure 502 {object} APIResponse "Provider call failed"
// @Failure 503 {object} APIResponse "No provider configured"
// @Router /invoices/{number}/smart-fill [post]
func (h *InvoiceHandler) SmartFill(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	view, err := h.invoiceService.SmartFill(c.Request.Context(), c.Param("number"), req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// SubmitPayment handles POST /api/v1/invoices/:number/payment
func (h *InvoiceHandler) SubmitPayment(c *gin.Context) {
	view, err := h.invoiceService.SubmitPayment(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// ConfirmPayment handles POST /api/v1/invoices/:number/payment/confirm
func (h *InvoiceHandler) ConfirmPayment(c *gin.Context) {
	view, err := h.invoiceService.ConfirmPayment(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// CancelPayment handles POST /api/v1/invoices/:number/payment/cancel
func (h *InvoiceHandler) CancelPayment(c *gin.Context) {
	view, err := h.invoiceService.CancelPayment(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// DownloadPDF handles POST /api/v1/invoices/:number/pdf
// The invoice is saved to history before the PDF is returned, so the route is
// not a GET.
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	res, err := h.invoiceService.DownloadPDF(c.Request.Context(), c.Param("number"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if res.ArchiveURL != "" {
		c.Header("X-Archive-URL", res.ArchiveURL)
	}
	RespondAttachment(c, res.Filename, "application/pdf", res.Content)
}
