package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type createInvoiceRequest struct {
	ProjectID   string  `json:"project_id"`
	ClientName  string  `json:"client_name"`
	InvoiceItem string  `json:"invoice_item"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	DueDate     string  `json:"due_date"`
}

type invoicePaymentRequest struct {
	Amount          float64                     `json:"amount"`
	PaymentDate     string                      `json:"payment_date,omitempty"`
	PaymentMethod   invoicedomain.PaymentMethod `json:"payment_method,omitempty"`
	ReferenceNumber string                      `json:"reference_number,omitempty"`
	Description     string                      `json:"description,omitempty"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), strings.TrimSpace(req.ProjectID), invoicedomain.CreateRequest{
		ClientName:  strings.TrimSpace(req.ClientName),
		InvoiceItem: strings.TrimSpace(req.InvoiceItem),
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		DueDate:     dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ProjectID string `form:"project_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, info, err := s.invoiceSvc.List(c.Request.Context(), strings.TrimSpace(query.ProjectID), query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InvoiceAging(c *gin.Context) {
	resp, err := s.invoiceSvc.Aging(c.Request.Context(), strings.TrimSpace(c.Query("project_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InvoicePDF(c *gin.Context) {
	pdf, err := s.invoiceSvc.RenderPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) AddInvoicePayment(c *gin.Context) {
	req, ok := bindInvoicePayment(c)
	if !ok {
		return
	}

	resp, err := s.invoiceSvc.AddPayment(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateInvoicePayment(c *gin.Context) {
	req, ok := bindInvoicePayment(c)
	if !ok {
		return
	}

	invoiceID := strings.TrimSpace(c.Param("id"))
	paymentID := strings.TrimSpace(c.Param("paymentId"))
	resp, err := s.invoiceSvc.UpdatePayment(c.Request.Context(), invoiceID, paymentID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveInvoicePayment(c *gin.Context) {
	invoiceID := strings.TrimSpace(c.Param("id"))
	paymentID := strings.TrimSpace(c.Param("paymentId"))
	resp, err := s.invoiceSvc.RemovePayment(c.Request.Context(), invoiceID, paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func bindInvoicePayment(c *gin.Context) (invoicedomain.PaymentRequest, bool) {
	var req invoicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return invoicedomain.PaymentRequest{}, false
	}

	paymentDate, err := parseOptionalTime(req.PaymentDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date"))
		return invoicedomain.PaymentRequest{}, false
	}

	return invoicedomain.PaymentRequest{
		Amount:          req.Amount,
		PaymentDate:     paymentDate,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Description:     strings.TrimSpace(req.Description),
	}, true
}
