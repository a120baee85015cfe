package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	carrierdomain "github.com/gestorhub/gestor/internal/carrier/domain"
)

func (s *Server) CreateCarrier(c *gin.Context) {
	var req carrierdomain.CreateCarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.carrierSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCarrier(c *gin.Context) {
	var req carrierdomain.UpdateCarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.carrierSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCarrier(c *gin.Context) {
	if err := s.carrierSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetCarrierByID(c *gin.Context) {
	resp, err := s.carrierSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCarriers(c *gin.Context) {
	var req carrierdomain.ListCarrierRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.carrierSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func isCarrierValidationError(err error) bool {
	switch err {
	case carrierdomain.ErrInvalidCompany,
		carrierdomain.ErrInvalidName,
		carrierdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
