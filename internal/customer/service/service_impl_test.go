package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/gestorhub/gestor/internal/customer/domain"
	"github.com/gestorhub/gestor/internal/customer/repository"
	"github.com/gestorhub/gestor/internal/requestctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		customer_id INTEGER NOT NULL,
		status TEXT NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create orders: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	ctx := requestctx.WithActor(context.Background(), requestctx.Actor{
		UserID:    node.Generate(),
		CompanyID: node.Generate(),
		Role:      "admin",
	})

	return svc, db, node, ctx
}

func TestCreateCustomerRejectsDuplicateDocument(t *testing.T) {
	svc, db, _, ctx := setup(t)

	err := db.Exec(`CREATE UNIQUE INDEX idx_customers_company_document ON customers (company_id, document) WHERE document <> ''`).Error
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	if _, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Maria", Document: "12.345.678/0001-90"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Marta", Document: "12.345.678/0001-90"}); !errors.Is(err, domain.ErrDocumentTaken) {
		t.Fatalf("expected document taken, got %v", err)
	}
	// Customers without a document are still unconstrained.
	if _, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Nina"}); err != nil {
		t.Fatalf("create without document: %v", err)
	}
}

func TestCreateCustomerDefaults(t *testing.T) {
	svc, _, _, ctx := setup(t)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "  Maria Souza  ",
		Email: "maria@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if customer.Name != "Maria Souza" {
		t.Fatalf("expected trimmed name, got %q", customer.Name)
	}
	if customer.Kind != domain.KindIndividual {
		t.Fatalf("expected default kind, got %s", customer.Kind)
	}
	if !customer.Active {
		t.Fatal("expected active customer")
	}
}

func TestCreateCustomerRejectsUnknownKind(t *testing.T) {
	svc, _, _, ctx := setup(t)

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name: "Acme",
		Kind: "alien",
	})
	if !errors.Is(err, domain.ErrInvalidKind) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestCreateRequiresCompanyScope(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Acme"})
	if !errors.Is(err, domain.ErrInvalidCompany) {
		t.Fatalf("expected invalid company, got %v", err)
	}
}

func TestUpdateCustomerPartialFields(t *testing.T) {
	svc, _, _, ctx := setup(t)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Acme",
		Email: "old@example.com",
		Phone: "1199999",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	email := "new@example.com"
	updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{
		ID:    customer.ID.String(),
		Email: &email,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Email != "new@example.com" {
		t.Fatalf("expected updated email, got %s", updated.Email)
	}
	if updated.Phone != "1199999" {
		t.Fatalf("untouched field changed: %s", updated.Phone)
	}
}

func TestDeleteCustomerBlockedByOpenOrders(t *testing.T) {
	svc, db, node, ctx := setup(t)
	companyID, _ := requestctx.CompanyID(ctx)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Exec(
		`INSERT INTO orders (id, company_id, customer_id, status) VALUES (?, ?, ?, 'pending')`,
		node.Generate(), companyID, customer.ID,
	).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if err := svc.Delete(ctx, customer.ID.String()); !errors.Is(err, domain.ErrHasOpenOrders) {
		t.Fatalf("expected has open orders, got %v", err)
	}

	// Completed orders no longer block deletion.
	if err := db.Exec(`UPDATE orders SET status = 'completed'`).Error; err != nil {
		t.Fatalf("close order: %v", err)
	}
	if err := svc.Delete(ctx, customer.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, customer.ID.String()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCustomersFilters(t *testing.T) {
	svc, _, _, ctx := setup(t)

	names := []string{"Alpha Ltda", "Beta ME", "Alvorada SA"}
	for _, name := range names {
		if _, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: name, Kind: domain.KindCompany}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	resp, err := svc.List(ctx, domain.ListCustomerRequest{Search: "Al"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Meta.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", resp.Meta.Total)
	}
	if len(resp.Customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(resp.Customers))
	}
	// Ordered by name.
	if resp.Customers[0].Name != "Alpha Ltda" || resp.Customers[1].Name != "Alvorada SA" {
		t.Fatalf("unexpected order: %s, %s", resp.Customers[0].Name, resp.Customers[1].Name)
	}
}
