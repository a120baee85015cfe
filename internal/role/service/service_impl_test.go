package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/gestorhub/gestor/internal/requestctx"
	"github.com/gestorhub/gestor/internal/role/domain"
	"github.com/gestorhub/gestor/internal/role/repository"
	"github.com/gestorhub/gestor/pkg/db/pagination"
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
	if err := db.AutoMigrate(&domain.Role{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX idx_roles_company_name ON roles (company_id, name)`).Error; err != nil {
		t.Fatalf("create index: %v", err)
	}
	if err := db.Exec(`CREATE TABLE employees (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		role_id INTEGER
	)`).Error; err != nil {
		t.Fatalf("create employees: %v", err)
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

func TestCreateRoleDefaultsPermissions(t *testing.T) {
	svc, _, _, ctx := setup(t)

	role, err := svc.Create(ctx, domain.CreateRoleRequest{Name: "Technician"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if role.Permissions == nil || len(role.Permissions) != 0 {
		t.Fatalf("expected empty permissions, got %v", role.Permissions)
	}
}

func TestCreateRoleRejectsDuplicateName(t *testing.T) {
	svc, _, _, ctx := setup(t)

	if _, err := svc.Create(ctx, domain.CreateRoleRequest{Name: "Manager"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRoleRequest{Name: "Manager"}); !errors.Is(err, domain.ErrNameTaken) {
		t.Fatalf("expected name taken, got %v", err)
	}
}

func TestUpdateRolePermissions(t *testing.T) {
	svc, _, _, ctx := setup(t)

	role, err := svc.Create(ctx, domain.CreateRoleRequest{
		Name:        "Sales",
		Permissions: []string{"orders.read"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	permissions := []string{"orders.read", "orders.write"}
	updated, err := svc.Update(ctx, domain.UpdateRoleRequest{
		ID:          role.ID.String(),
		Permissions: &permissions,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Permissions) != 2 {
		t.Fatalf("expected 2 permissions, got %v", updated.Permissions)
	}
}

func TestDeleteRoleInUse(t *testing.T) {
	svc, db, node, ctx := setup(t)
	companyID, _ := requestctx.CompanyID(ctx)

	role, err := svc.Create(ctx, domain.CreateRoleRequest{Name: "Mechanic"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Exec(
		`INSERT INTO employees (id, company_id, role_id) VALUES (?, ?, ?)`,
		node.Generate(), companyID, role.ID,
	).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	if err := svc.Delete(ctx, role.ID.String()); !errors.Is(err, domain.ErrRoleInUse) {
		t.Fatalf("expected role in use, got %v", err)
	}

	if err := db.Exec(`DELETE FROM employees`).Error; err != nil {
		t.Fatalf("clear employees: %v", err)
	}
	if err := svc.Delete(ctx, role.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestListRolesScopedToCompany(t *testing.T) {
	svc, _, node, ctx := setup(t)

	if _, err := svc.Create(ctx, domain.CreateRoleRequest{Name: "Admin"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	otherCtx := requestctx.WithActor(context.Background(), requestctx.Actor{
		UserID:    node.Generate(),
		CompanyID: node.Generate(),
		Role:      "admin",
	})

	resp, err := svc.List(otherCtx, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Meta.Total != 0 {
		t.Fatalf("expected no roles for other company, got %d", resp.Meta.Total)
	}
}
