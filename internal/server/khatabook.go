package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type createKhatabookEntryRequest struct {
	PersonID    string                      `json:"person_id"`
	ProjectID   string                      `json:"project_id,omitempty"`
	Amount      float64                     `json:"amount"`
	EntryType   khatabookdomain.EntryType   `json:"entry_type"`
	PaymentMode khatabookdomain.PaymentMode `json:"payment_mode,omitempty"`
	Remarks     string                      `json:"remarks,omitempty"`
	Metadata    map[string]any              `json:"metadata,omitempty"`
	EntryDate   string                      `json:"entry_date,omitempty"`
}

func (s *Server) CreateKhatabookEntry(c *gin.Context) {
	var req createKhatabookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entryDate, err := parseOptionalTime(req.EntryDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("entry_date", "invalid_entry_date", "invalid entry_date"))
		return
	}

	resp, err := s.khatabookSvc.CreateEntry(c.Request.Context(), khatabookdomain.CreateEntryRequest{
		PersonID:    strings.TrimSpace(req.PersonID),
		ProjectID:   strings.TrimSpace(req.ProjectID),
		Amount:      req.Amount,
		EntryType:   req.EntryType,
		PaymentMode: req.PaymentMode,
		Remarks:     strings.TrimSpace(req.Remarks),
		Metadata:    req.Metadata,
		EntryDate:   entryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListKhatabookEntries(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PersonID  string `form:"person_id"`
		ProjectID string `form:"project_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, info, err := s.khatabookSvc.List(c.Request.Context(), khatabookdomain.ListRequest{
		PersonID:  strings.TrimSpace(query.PersonID),
		ProjectID: strings.TrimSpace(query.ProjectID),
		Page:      query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

type updateKhatabookEntryRequest struct {
	Amount      *float64                     `json:"amount,omitempty"`
	EntryType   *khatabookdomain.EntryType   `json:"entry_type,omitempty"`
	PaymentMode *khatabookdomain.PaymentMode `json:"payment_mode,omitempty"`
	Remarks     *string                      `json:"remarks,omitempty"`
	EntryDate   string                       `json:"entry_date,omitempty"`
}

func (s *Server) UpdateKhatabookEntry(c *gin.Context) {
	var req updateKhatabookEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entryDate, err := parseOptionalTime(req.EntryDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("entry_date", "invalid_entry_date", "invalid entry_date"))
		return
	}

	resp, err := s.khatabookSvc.UpdateEntry(c.Request.Context(), strings.TrimSpace(c.Param("id")), khatabookdomain.UpdateEntryRequest{
		Amount:      req.Amount,
		EntryType:   req.EntryType,
		PaymentMode: req.PaymentMode,
		Remarks:     req.Remarks,
		EntryDate:   entryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteKhatabookEntry(c *gin.Context) {
	if err := s.khatabookSvc.RemoveEntry(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
