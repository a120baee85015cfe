package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/gestorhub/gestor/internal/order/domain"
	"github.com/gestorhub/gestor/internal/providers/pdf"
	"github.com/gestorhub/gestor/internal/requestctx"
)

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateOrder(c *gin.Context) {
	var req orderdomain.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.orderSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req orderdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.orderSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.orderSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.orderSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var req orderdomain.ListOrderRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DownloadOrderPDF(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := s.orderSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.OrderData{
		Number:       order.Number,
		Date:         order.CreatedAt.Format("2006-01-02"),
		Status:       string(order.Status),
		CustomerName: order.CustomerName,
		Subtotal:     order.Total.Sub(order.Freight).Add(order.Discount).StringFixed(2),
		Discount:     zeroBlank(order.Discount.StringFixed(2)),
		Freight:      zeroBlank(order.Freight.StringFixed(2)),
		Total:        order.Total.StringFixed(2),
		Notes:        order.Notes,
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
	if order.CarrierID != nil {
		if carrier, err := s.carrierSvc.GetByID(ctx, order.CarrierID.String()); err == nil {
			data.CarrierName = carrier.Name
		}
	}

	for _, item := range order.Items {
		data.Items = append(data.Items, pdf.OrderItem{
			Description: item.ProductName,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Discount:    item.Discount.StringFixed(2),
			Total:       item.Total.StringFixed(2),
		})
	}

	doc, err := s.pdf.GenerateOrder(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	servePDF(c, doc, fmt.Sprintf("order-%s.pdf", order.Number))
}

func servePDF(c *gin.Context, doc io.Reader, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}

func companyAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func zeroBlank(amount string) string {
	if amount == "0.00" {
		return ""
	}
	return amount
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidCompany,
		orderdomain.ErrInvalidID,
		orderdomain.ErrInvalidCustomer,
		orderdomain.ErrInvalidCarrier,
		orderdomain.ErrInvalidItems,
		orderdomain.ErrInvalidQuantity,
		orderdomain.ErrInvalidDiscount,
		orderdomain.ErrInvalidStatus,
		orderdomain.ErrProductInactive:
		return true
	default:
		return false
	}
}
