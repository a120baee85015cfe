package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	customerdomain "github.com/gestorhub/gestor/internal/customer/domain"
	"github.com/gestorhub/gestor/internal/order/domain"
	"github.com/gestorhub/gestor/internal/order/repository"
	productdomain "github.com/gestorhub/gestor/internal/product/domain"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	companyID snowflake.ID
	ctx       context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	err = db.AutoMigrate(
		&domain.Order{},
		&domain.Item{},
		&customerdomain.Customer{},
		&productdomain.Product{},
		&stock.Movement{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE TABLE carriers (id INTEGER PRIMARY KEY, company_id INTEGER NOT NULL, name TEXT)`).Error; err != nil {
		t.Fatalf("create carriers: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX idx_orders_company_number ON orders (company_id, number)`).Error; err != nil {
		t.Fatalf("create index: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	companyID := node.Generate()

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	ctx := requestctx.WithActor(context.Background(), requestctx.Actor{
		UserID:    node.Generate(),
		CompanyID: companyID,
		Role:      "admin",
	})

	return &fixture{svc: svc, db: db, node: node, companyID: companyID, ctx: ctx}
}

func (f *fixture) seedCustomer(t *testing.T) snowflake.ID {
	t.Helper()
	customer := customerdomain.Customer{
		ID:        f.node.Generate(),
		CompanyID: f.companyID,
		Name:      "Acme Ltda",
		Kind:      customerdomain.KindCompany,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer.ID
}

func (f *fixture) seedProduct(t *testing.T, price string, stockQty int64) snowflake.ID {
	t.Helper()
	product := productdomain.Product{
		ID:        f.node.Generate(),
		CompanyID: f.companyID,
		Name:      "Widget",
		Unit:      "un",
		Price:     decimal.RequireFromString(price),
		Cost:      decimal.Zero,
		Stock:     stockQty,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func (f *fixture) productStock(t *testing.T, productID snowflake.ID) int64 {
	t.Helper()
	var got int64
	if err := f.db.Raw(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&got).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return got
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 2},
		},
		Freight: decimal.RequireFromString("5.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	prefix := time.Now().UTC().Format("0601")
	if order.Number != prefix+"0001" {
		t.Fatalf("unexpected number %s", order.Number)
	}
	if !order.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", order.Total)
	}
	if got := f.productStock(t, productID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	var movement stock.Movement
	if err := f.db.Where("product_id = ?", productID).First(&movement).Error; err != nil {
		t.Fatalf("movement: %v", err)
	}
	if movement.Quantity != -2 || movement.Reason != stock.ReasonSale {
		t.Fatalf("unexpected movement %+v", movement)
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 1)

	_, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 3},
		},
	})
	if !errors.Is(err, stock.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := f.productStock(t, productID); got != 1 {
		t.Fatalf("stock changed on failed create: %d", got)
	}

	var count int64
	if err := f.db.Model(&domain.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 10)

	var numbers []string
	for i := 0; i < 3; i++ {
		order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
			CustomerID: customerID.String(),
			Items: []domain.ItemRequest{
				{ProductID: productID.String(), Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		numbers = append(numbers, order.Number)
	}

	prefix := time.Now().UTC().Format("0601")
	want := []string{prefix + "0001", prefix + "0002", prefix + "0003"}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, numbers)
		}
	}
}

// contendedRepo simulates a concurrent writer grabbing the computed
// number just before the insert. The conflicting row is written inside
// the same transaction, so the rollback clears it and the retry scans
// a clean table.
type contendedRepo struct {
	domain.Repository
	node    *snowflake.Node
	clashed bool
}

func (r *contendedRepo) Insert(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	if !r.clashed {
		r.clashed = true
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO orders (id, company_id, customer_id, number, status, discount, freight, total, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 'pending', 0, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			r.node.Generate(), order.CompanyID, order.CustomerID, order.Number,
		).Error
		if err != nil {
			return err
		}
	}
	return r.Repository.Insert(ctx, tx, order)
}

func TestCreateOrderRetriesOnNumberCollision(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	repo := &contendedRepo{Repository: repository.Provide(), node: f.node}
	svc := New(Params{
		DB:    f.db,
		Log:   zap.NewNop(),
		GenID: f.node,
		Repo:  repo,
	})

	order, err := svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !repo.clashed {
		t.Fatal("collision never triggered")
	}

	// The retried attempt reuses the number freed by the rollback.
	prefix := time.Now().UTC().Format("0601")
	if order.Number != prefix+"0001" {
		t.Fatalf("unexpected number %s", order.Number)
	}

	var orders int64
	if err := f.db.Model(&domain.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 1 {
		t.Fatalf("expected exactly one order, got %d", orders)
	}

	// The aborted attempt must not have moved stock.
	if got := f.productStock(t, productID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
	var movements int64
	if err := f.db.Model(&stock.Movement{}).Count(&movements).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movements != 1 {
		t.Fatalf("expected one movement, got %d", movements)
	}
}

func TestCreateOrderRejectsUnknownCustomer(t *testing.T) {
	f := setup(t)
	productID := f.seedProduct(t, "10.00", 5)

	_, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: f.node.Generate().String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
		},
	})
	if !errors.Is(err, domain.ErrInvalidCustomer) {
		t.Fatalf("expected invalid customer, got %v", err)
	}
}

func TestCreateOrderRejectsExcessiveLineDiscount(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	_, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1, Discount: decimal.RequireFromString("11.00")},
		},
	})
	if !errors.Is(err, domain.ErrInvalidDiscount) {
		t.Fatalf("expected invalid discount, got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	if got := f.productStock(t, productID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
}

func TestCancelledOrderAcceptsNoFurtherTransitions(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusCancelled,
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err = f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusApproved,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	// Double cancel restores nothing twice.
	_, err = f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusCancelled,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if got := f.productStock(t, productID); got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}
}

func TestApproveThenCompleteKeepsStock(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, next := range []domain.Status{domain.StatusApproved, domain.StatusCompleted} {
		if _, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
			ID:     order.ID.String(),
			Status: next,
		}); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if got := f.productStock(t, productID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
}

func TestUpdateOrderAdjustsStockByDiff(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 10)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.productStock(t, productID); got != 6 {
		t.Fatalf("expected stock 6, got %d", got)
	}

	updated, err := f.svc.Update(f.ctx, domain.UpdateOrderRequest{
		ID: order.ID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", updated.Total)
	}

	// Three units go back on the shelf.
	if got := f.productStock(t, productID); got != 9 {
		t.Fatalf("expected stock 9, got %d", got)
	}
}

func TestUpdateRejectsNonPendingOrder(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusApproved,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = f.svc.Update(f.ctx, domain.UpdateOrderRequest{
		ID: order.ID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 2},
		},
	})
	if !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("expected not pending, got %v", err)
	}
}

func TestDeletePendingOrderRestoresStock(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(f.ctx, order.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := f.productStock(t, productID); got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}
	if _, err := f.svc.GetByID(f.ctx, order.ID.String()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderUsesCustomUnitPrice(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 5)

	price := decimal.RequireFromString("7.50")
	order, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 2, UnitPrice: &price},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !order.Total.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected 15.00, got %s", order.Total)
	}
}

func TestListOrdersScopedToCompany(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, "10.00", 10)

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Create(f.ctx, domain.CreateOrderRequest{
			CustomerID: customerID.String(),
			Items: []domain.ItemRequest{
				{ProductID: productID.String(), Quantity: 1},
			},
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	otherCtx := requestctx.WithActor(context.Background(), requestctx.Actor{
		UserID:    f.node.Generate(),
		CompanyID: f.node.Generate(),
		Role:      "admin",
	})

	resp, err := f.svc.List(f.ctx, domain.ListOrderRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Meta.Total != 2 {
		t.Fatalf("expected 2 orders, got %d", resp.Meta.Total)
	}

	other, err := f.svc.List(otherCtx, domain.ListOrderRequest{})
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if other.Meta.Total != 0 {
		t.Fatalf("expected no orders for other company, got %d", other.Meta.Total)
	}
}
