package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gestorhub/gestor/internal/auth"
	authdomain "github.com/gestorhub/gestor/internal/auth/domain"
	"github.com/gestorhub/gestor/internal/auth/token"
	"github.com/gestorhub/gestor/internal/carrier"
	carrierdomain "github.com/gestorhub/gestor/internal/carrier/domain"
	"github.com/gestorhub/gestor/internal/config"
	"github.com/gestorhub/gestor/internal/customer"
	customerdomain "github.com/gestorhub/gestor/internal/customer/domain"
	"github.com/gestorhub/gestor/internal/employee"
	employeedomain "github.com/gestorhub/gestor/internal/employee/domain"
	"github.com/gestorhub/gestor/internal/financial"
	financialdomain "github.com/gestorhub/gestor/internal/financial/domain"
	"github.com/gestorhub/gestor/internal/observability"
	obslogger "github.com/gestorhub/gestor/internal/observability/logger"
	obsmetrics "github.com/gestorhub/gestor/internal/observability/metrics"
	obstracing "github.com/gestorhub/gestor/internal/observability/tracing"
	"github.com/gestorhub/gestor/internal/order"
	orderdomain "github.com/gestorhub/gestor/internal/order/domain"
	"github.com/gestorhub/gestor/internal/product"
	productdomain "github.com/gestorhub/gestor/internal/product/domain"
	"github.com/gestorhub/gestor/internal/providers/pdf"
	"github.com/gestorhub/gestor/internal/role"
	roledomain "github.com/gestorhub/gestor/internal/role/domain"
	"github.com/gestorhub/gestor/internal/serviceorder"
	serviceorderdomain "github.com/gestorhub/gestor/internal/serviceorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	auth.Module,
	customer.Module,
	carrier.Module,
	order.Module,
	product.Module,
	serviceorder.Module,
	financial.Module,
	role.Module,
	employee.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", httpMetrics.Handler())

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node
	tokens *token.Manager

	authsvc         authdomain.Service
	authrepo        authdomain.Repository
	customerSvc     customerdomain.Service
	orderSvc        orderdomain.Service
	serviceOrderSvc serviceorderdomain.Service
	financialSvc    financialdomain.Service
	roleSvc         roledomain.Service
	employeeSvc     employeedomain.Service
	carrierSvc      carrierdomain.Service
	productSvc      productdomain.Service
	pdf             pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Tokens          *token.Manager
	Authsvc         authdomain.Service
	Authrepo        authdomain.Repository
	CustomerSvc     customerdomain.Service
	ProductSvc      productdomain.Service
	OrderSvc        orderdomain.Service
	ServiceOrderSvc serviceorderdomain.Service
	FinancialSvc    financialdomain.Service
	RoleSvc         roledomain.Service
	EmployeeSvc     employeedomain.Service
	CarrierSvc      carrierdomain.Service
	PDF             pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		tokens:          p.Tokens,
		authsvc:         p.Authsvc,
		authrepo:        p.Authrepo,
		customerSvc:     p.CustomerSvc,
		productSvc:      p.ProductSvc,
		orderSvc:        p.OrderSvc,
		serviceOrderSvc: p.ServiceOrderSvc,
		financialSvc:    p.FinancialSvc,
		roleSvc:         p.RoleSvc,
		employeeSvc:     p.EmployeeSvc,
		carrierSvc:      p.CarrierSvc,
		pdf:             p.PDF,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/refresh", s.Refresh)
	auth.POST("/forgot-password", s.ForgotPassword)
	auth.POST("/reset-password", s.ResetPassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.PUT("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)
	api.POST("/products/:id/adjust-stock", s.AdjustProductStock)
	api.GET("/products/:id/movements", s.ListProductMovements)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.PATCH("/orders/:id", s.UpdateOrder)
	api.PUT("/orders/:id", s.UpdateOrder)
	api.DELETE("/orders/:id", s.DeleteOrder)
	api.POST("/orders/:id/status", s.UpdateOrderStatus)
	api.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	api.GET("/orders/:id/pdf", s.DownloadOrderPDF)

	// -------- Service Orders --------
	api.GET("/service-orders", s.ListServiceOrders)
	api.POST("/service-orders", s.CreateServiceOrder)
	api.GET("/service-orders/:id", s.GetServiceOrderByID)
	api.PATCH("/service-orders/:id", s.UpdateServiceOrder)
	api.PUT("/service-orders/:id", s.UpdateServiceOrder)
	api.DELETE("/service-orders/:id", s.DeleteServiceOrder)
	api.POST("/service-orders/:id/status", s.UpdateServiceOrderStatus)
	api.PATCH("/service-orders/:id/status", s.UpdateServiceOrderStatus)
	api.GET("/service-orders/:id/pdf", s.DownloadServiceOrderPDF)

	// -------- Financial --------
	api.GET("/transactions", s.ListTransactions)
	api.POST("/transactions", s.CreateTransaction)
	api.GET("/transactions/:id", s.GetTransactionByID)
	api.PATCH("/transactions/:id", s.UpdateTransaction)
	api.PUT("/transactions/:id", s.UpdateTransaction)
	api.DELETE("/transactions/:id", s.DeleteTransaction)
	api.POST("/transactions/:id/pay", s.PayTransaction)
	api.POST("/transactions/:id/cancel", s.CancelTransaction)
	api.GET("/receivables", s.ListReceivables)
	api.GET("/payables", s.ListPayables)
	api.GET("/reports/cashflow", s.GetCashflow)

	// -------- Staff --------
	api.GET("/roles", s.ListRoles)
	api.POST("/roles", s.CreateRole)
	api.GET("/roles/:id", s.GetRoleByID)
	api.PATCH("/roles/:id", s.UpdateRole)
	api.PUT("/roles/:id", s.UpdateRole)
	api.DELETE("/roles/:id", s.DeleteRole)

	api.GET("/employees", s.ListEmployees)
	api.POST("/employees", s.CreateEmployee)
	api.GET("/employees/:id", s.GetEmployeeByID)
	api.PATCH("/employees/:id", s.UpdateEmployee)
	api.PUT("/employees/:id", s.UpdateEmployee)
	api.DELETE("/employees/:id", s.DeleteEmployee)

	// -------- Carriers --------
	api.GET("/carriers", s.ListCarriers)
	api.POST("/carriers", s.CreateCarrier)
	api.GET("/carriers/:id", s.GetCarrierByID)
	api.PATCH("/carriers/:id", s.UpdateCarrier)
	api.PUT("/carriers/:id", s.UpdateCarrier)
	api.DELETE("/carriers/:id", s.DeleteCarrier)
}
