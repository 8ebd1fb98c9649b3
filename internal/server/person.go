package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	persondomain "github.com/sitekhata/sitekhata/internal/person/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

func (s *Server) CreatePerson(c *gin.Context) {
	var req persondomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	resp, err := s.personSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPersons(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, info, err := s.personSvc.List(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetPerson(c *gin.Context) {
	resp, err := s.personSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePerson(c *gin.Context) {
	var req persondomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.personSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePerson(c *gin.Context) {
	if err := s.personSvc.Remove(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) PersonBalance(c *gin.Context) {
	resp, err := s.khatabookSvc.Balance(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
