package handler

import (
	"net/http"

	"solarflow/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/invoices", auth)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/:id/payments", h.RecordPayment)
	}
}

// List handles GET /invoices
// @Summary      List invoices
// @Description  Invoices with client and line items. Invoices whose client is missing are left out.
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        clientId  query     string  false  "Only invoices of this client"
// @Success      200       {array}   model.InvoiceWithItems
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	clientID, ok := queryID(c, "clientId")
	if !ok {
		return
	}
	invoices, err := h.invoiceService.List(c.Request.Context(), caller(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// Get handles GET /invoices/:id
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  model.InvoiceWithItems
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Create handles POST /invoices
// @Summary      Create invoice
// @Description  Stores the invoice and its items atomically. The number is generated (INV-YYYYMMDD-NNNNN) and the total derived from the items when omitted.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice"
// @Success      201      {object}  model.Invoice
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// RecordPayment handles POST /invoices/:id/payments
// @Summary      Record payment
// @Description  Adds amount to amountPaid and re-derives the status (paid, partial, pending).
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment"
// @Success      200      {object}  model.Invoice
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
