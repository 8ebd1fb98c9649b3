package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

func (s *Server) CreateProject(c *gin.Context) {
	var req projectdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.projectSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProjects(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, info, err := s.projectSvc.List(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetProject(c *gin.Context) {
	resp, err := s.projectSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProject(c *gin.Context) {
	var req projectdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProject(c *gin.Context) {
	if err := s.projectSvc.Remove(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
