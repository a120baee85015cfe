package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/gestorhub/gestor/internal/customer/domain"
	orderdomain "github.com/gestorhub/gestor/internal/order/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
)

// customerDetail extends the customer record with its latest orders for
// the detail view.
type customerDetail struct {
	customerdomain.Customer
	RecentOrders []orderdomain.Order `json:"recent_orders"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerdomain.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerdomain.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.customerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.customerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	customer, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orders, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrderRequest{
		Params:     pagination.Params{Limit: 5},
		CustomerID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := customerDetail{Customer: customer, RecentOrders: orders.Orders}
	if resp.RecentOrders == nil {
		resp.RecentOrders = []orderdomain.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var req customerdomain.ListCustomerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func isCustomerValidationError(err error) bool {
	switch err {
	case customerdomain.ErrInvalidCompany,
		customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidKind,
		customerdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
