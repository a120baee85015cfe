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
	employeedomain "github.com/gestorhub/gestor/internal/employee/domain"
	productdomain "github.com/gestorhub/gestor/internal/product/domain"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/serviceorder/domain"
	"github.com/gestorhub/gestor/internal/serviceorder/repository"
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
		&domain.ServiceOrder{},
		&domain.Item{},
		&domain.Event{},
		&customerdomain.Customer{},
		&employeedomain.Employee{},
		&productdomain.Product{},
		&stock.Movement{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX idx_service_orders_company_number ON service_orders (company_id, number)`).Error; err != nil {
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
		Name:      "Joana Prado",
		Kind:      customerdomain.KindIndividual,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer.ID
}

func (f *fixture) seedEmployee(t *testing.T, companyID snowflake.ID) snowflake.ID {
	t.Helper()
	employee := employeedomain.Employee{
		ID:        f.node.Generate(),
		CompanyID: companyID,
		Name:      "Carlos Mendes",
		Position:  "technician",
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.db.Create(&employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return employee.ID
}

func (f *fixture) seedProduct(t *testing.T, stockQty int64) snowflake.ID {
	t.Helper()
	product := productdomain.Product{
		ID:        f.node.Generate(),
		CompanyID: f.companyID,
		Name:      "Replacement Screen",
		Unit:      "un",
		Price:     decimal.RequireFromString("80.00"),
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

func TestCreateServiceOrder(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, 3)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID:    customerID.String(),
		Equipment:     "Notebook X13",
		ReportedIssue: "cracked screen",
		LaborCost:     decimal.RequireFromString("50.00"),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
			{Description: "Diagnostics", Quantity: 1, UnitPrice: ptrDecimal("20.00")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	prefix := "OS" + time.Now().UTC().Format("0601")
	if order.Number != prefix+"0001" {
		t.Fatalf("unexpected number %s", order.Number)
	}
	// 80 (part) + 20 (diagnostics) + 50 (labor)
	if !order.Total.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected total 150.00, got %s", order.Total)
	}

	// The part comes off the shelf, the free-form line does not.
	if got := f.productStock(t, productID); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}

	if len(order.Events) != 1 || order.Events[0].ToStatus != domain.StatusPending {
		t.Fatalf("expected opening event, got %+v", order.Events)
	}
}

func TestCreateWithPriorityAndTechnician(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	employeeID := f.seedEmployee(t, f.companyID)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		EmployeeID: employeeID.String(),
		Priority:   "urgent",
		Equipment:  "Espresso machine",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Priority != domain.PriorityUrgent {
		t.Fatalf("expected urgent, got %s", order.Priority)
	}
	if order.EmployeeID == nil || *order.EmployeeID != employeeID {
		t.Fatalf("expected employee %s, got %v", employeeID, order.EmployeeID)
	}
	if order.EmployeeName != "Carlos Mendes" {
		t.Fatalf("unexpected employee name %q", order.EmployeeName)
	}
}

func TestCreateDefaultsToNormalPriority(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Priority != domain.PriorityNormal {
		t.Fatalf("expected normal, got %s", order.Priority)
	}
	if order.EmployeeID != nil {
		t.Fatalf("expected unassigned order, got %v", order.EmployeeID)
	}
}

func TestCreateRejectsUnknownPriority(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	_, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		Priority:   "asap",
	})
	if !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("expected invalid priority, got %v", err)
	}
}

func TestCreateRejectsForeignTechnician(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	otherEmployee := f.seedEmployee(t, f.node.Generate())

	_, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		EmployeeID: otherEmployee.String(),
	})
	if !errors.Is(err, domain.ErrInvalidEmployee) {
		t.Fatalf("expected invalid employee, got %v", err)
	}
}

func TestUpdateReassignsAndUnassignsTechnician(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	employeeID := f.seedEmployee(t, f.companyID)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assign := employeeID.String()
	assigned, err := f.svc.Update(f.ctx, domain.UpdateServiceOrderRequest{
		ID:         order.ID.String(),
		EmployeeID: &assign,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.EmployeeID == nil || *assigned.EmployeeID != employeeID {
		t.Fatalf("expected employee %s, got %v", employeeID, assigned.EmployeeID)
	}

	unassign := ""
	unassigned, err := f.svc.Update(f.ctx, domain.UpdateServiceOrderRequest{
		ID:         order.ID.String(),
		EmployeeID: &unassign,
	})
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if unassigned.EmployeeID != nil {
		t.Fatalf("expected unassigned order, got %v", unassigned.EmployeeID)
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

func (r *contendedRepo) Insert(ctx context.Context, tx *gorm.DB, order *domain.ServiceOrder) error {
	if !r.clashed {
		r.clashed = true
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO service_orders (id, company_id, customer_id, number, status, priority, labor_cost, discount, total, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 'pending', 'normal', 0, 0, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			r.node.Generate(), order.CompanyID, order.CustomerID, order.Number,
		).Error
		if err != nil {
			return err
		}
	}
	return r.Repository.Insert(ctx, tx, order)
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, 3)

	repo := &contendedRepo{Repository: repository.Provide(), node: f.node}
	svc := New(Params{
		DB:    f.db,
		Log:   zap.NewNop(),
		GenID: f.node,
		Repo:  repo,
	})

	order, err := svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !repo.clashed {
		t.Fatal("collision never triggered")
	}

	// The retried attempt reuses the number freed by the rollback.
	prefix := "OS" + time.Now().UTC().Format("0601")
	if order.Number != prefix+"0001" {
		t.Fatalf("unexpected number %s", order.Number)
	}

	var orders int64
	if err := f.db.Model(&domain.ServiceOrder{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 1 {
		t.Fatalf("expected exactly one order, got %d", orders)
	}

	// The aborted attempt must not have moved stock.
	if got := f.productStock(t, productID); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}
	var movements int64
	if err := f.db.Model(&stock.Movement{}).Count(&movements).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movements != 1 {
		t.Fatalf("expected one movement, got %d", movements)
	}
}

func TestCreateRequiresDescriptionWithoutProduct(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	_, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{Quantity: 1, UnitPrice: ptrDecimal("10.00")},
		},
	})
	if !errors.Is(err, domain.ErrInvalidItems) {
		t.Fatalf("expected invalid items, got %v", err)
	}
}

func TestStatusFlowSetsTimestamps(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		LaborCost:  decimal.RequireFromString("30.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inProgress, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusInProgress,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if inProgress.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	completed, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if len(completed.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(completed.Events))
	}
}

func TestWaitingPartsRoundTrip(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	flow := []domain.Status{
		domain.StatusInProgress,
		domain.StatusWaitingParts,
		domain.StatusInProgress,
		domain.StatusWaitingApproval,
		domain.StatusApproved,
		domain.StatusCompleted,
	}
	for _, next := range flow {
		if _, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
			ID:     order.ID.String(),
			Status: next,
		}); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
}

func TestCompleteRequiresWorkStarted(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusCompleted,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCancelReturnsParts(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, 5)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.productStock(t, productID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	if _, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     order.ID.String(),
		Status: domain.StatusCancelled,
		Note:   "customer declined the quote",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := f.productStock(t, productID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}

	// The return is audited apart from sale reversals.
	var reason string
	err = f.db.Raw(
		`SELECT reason FROM stock_movements WHERE product_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		productID,
	).Scan(&reason).Error
	if err != nil {
		t.Fatalf("read movement: %v", err)
	}
	if reason != stock.ReasonServiceOrderReversal {
		t.Fatalf("expected reason %s, got %s", stock.ReasonServiceOrderReversal, reason)
	}
}

func TestUpdateBlockedOnTerminalOrder(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
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

	diagnosis := "board corrosion"
	_, err = f.svc.Update(f.ctx, domain.UpdateServiceOrderRequest{
		ID:        order.ID.String(),
		Diagnosis: &diagnosis,
	})
	if !errors.Is(err, domain.ErrNotEditable) {
		t.Fatalf("expected not editable, got %v", err)
	}
}

func TestDeletePendingOnly(t *testing.T) {
	f := setup(t)
	customerID := f.seedCustomer(t)
	productID := f.seedProduct(t, 4)

	order, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
		Items: []domain.ItemRequest{
			{ProductID: productID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(f.ctx, order.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.productStock(t, productID); got != 4 {
		t.Fatalf("expected stock 4, got %d", got)
	}
	var returns int64
	err = f.db.Raw(
		`SELECT COUNT(1) FROM stock_movements WHERE product_id = ? AND reason = ?`,
		productID, stock.ReasonServiceOrderReversal,
	).Scan(&returns).Error
	if err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if returns != 1 {
		t.Fatalf("expected one return movement, got %d", returns)
	}

	started, err := f.svc.Create(f.ctx, domain.CreateServiceOrderRequest{
		CustomerID: customerID.String(),
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := f.svc.UpdateStatus(f.ctx, domain.UpdateStatusRequest{
		ID:     started.ID.String(),
		Status: domain.StatusInProgress,
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.svc.Delete(f.ctx, started.ID.String()); err == nil {
		t.Fatal("expected delete of started order to fail")
	}
}

func ptrDecimal(raw string) *decimal.Decimal {
	d := decimal.RequireFromString(raw)
	return &d
}
