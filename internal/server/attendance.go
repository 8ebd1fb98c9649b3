package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

func (s *Server) MarkAttendance(c *gin.Context) {
	var req attendancedomain.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.attendanceSvc.Mark(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListAttendance(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, info, err := s.attendanceSvc.List(c.Request.Context(), strings.TrimSpace(c.Param("id")), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) AttendanceSummary(c *gin.Context) {
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil || from == nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(c.Query("to"), false)
	if err != nil || to == nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.attendanceSvc.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")), *from, *to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PinCalculation(c *gin.Context) {
	resp, err := s.attendanceSvc.CalculateAndPin(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
