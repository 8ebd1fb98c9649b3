package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type configureWageRateRequest struct {
	DailyRate     float64 `json:"daily_rate"`
	EffectiveDate string  `json:"effective_date,omitempty"`
}

func (s *Server) ConfigureWageRate(c *gin.Context) {
	var req configureWageRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	effectiveDate, err := parseOptionalTime(req.EffectiveDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("effective_date", "invalid_effective_date", "invalid effective_date"))
		return
	}

	resp, err := s.wageRateSvc.Configure(c.Request.Context(), strings.TrimSpace(c.Param("id")), wageratedomain.ConfigureRequest{
		DailyRate:     req.DailyRate,
		EffectiveDate: effectiveDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) WageRateHistory(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, info, err := s.wageRateSvc.History(c.Request.Context(), strings.TrimSpace(c.Param("id")), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) CurrentWageRate(c *gin.Context) {
	resp, err := s.wageRateSvc.Current(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveWageRate(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("id"))
	rateID := strings.TrimSpace(c.Param("rateId"))
	if err := s.wageRateSvc.Remove(c.Request.Context(), projectID, rateID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
