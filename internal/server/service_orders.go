package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gestorhub/gestor/internal/providers/pdf"
	"github.com/gestorhub/gestor/internal/requestctx"
	serviceorderdomain "github.com/gestorhub/gestor/internal/serviceorder/domain"
)

func (s *Server) CreateServiceOrder(c *gin.Context) {
	var req serviceorderdomain.CreateServiceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceOrderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateServiceOrder(c *gin.Context) {
	var req serviceorderdomain.UpdateServiceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.serviceOrderSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateServiceOrderStatus(c *gin.Context) {
	var req serviceorderdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.serviceOrderSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteServiceOrder(c *gin.Context) {
	if err := s.serviceOrderSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetServiceOrderByID(c *gin.Context) {
	resp, err := s.serviceOrderSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListServiceOrders(c *gin.Context) {
	var req serviceorderdomain.ListServiceOrderRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.serviceOrderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DownloadServiceOrderPDF(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := s.serviceOrderSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.ServiceOrderData{
		Number:        order.Number,
		Date:          order.CreatedAt.Format("2006-01-02"),
		Status:        string(order.Status),
		CustomerName:  order.CustomerName,
		Equipment:     order.Equipment,
		ReportedIssue: order.ReportedIssue,
		Diagnosis:     order.Diagnosis,
		LaborCost:     order.LaborCost.StringFixed(2),
		Discount:      zeroBlank(order.Discount.StringFixed(2)),
		Total:         order.Total.StringFixed(2),
	}

	if companyID, ok := requestctx.CompanyID(ctx); ok {
		if company, err := s.authrepo.FindCompanyByID(ctx, s.db, companyID); err == nil && company != nil {
			data.CompanyName = company.Name
			data.CompanyDoc = company.Document
			data.CompanyAddr = companyAddress(company.Address, company.City, company.State)
		}
	}
	if customer, err := s.customerSvc.GetByID(ctx, order.CustomerID.String()); err == nil {
		data.CustomerDoc = customer.Document
		data.CustomerAddr = companyAddress(customer.Address, customer.City, customer.State)
	}

	for _, item := range order.Items {
		description := item.Description
		if description == "" {
			description = item.ProductName
		}
		data.Items = append(data.Items, pdf.OrderItem{
			Description: description,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.Total.StringFixed(2),
		})
	}

	doc, err := s.pdf.GenerateServiceOrder(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	servePDF(c, doc, fmt.Sprintf("service-order-%s.pdf", order.Number))
}

func isServiceOrderValidationError(err error) bool {
	switch err {
	case serviceorderdomain.ErrInvalidCompany,
		serviceorderdomain.ErrInvalidID,
		serviceorderdomain.ErrInvalidCustomer,
		serviceorderdomain.ErrInvalidEmployee,
		serviceorderdomain.ErrInvalidPriority,
		serviceorderdomain.ErrInvalidItems,
		serviceorderdomain.ErrInvalidQuantity,
		serviceorderdomain.ErrInvalidAmount,
		serviceorderdomain.ErrInvalidStatus,
		serviceorderdomain.ErrProductInactive:
		return true
	default:
		return false
	}
}
