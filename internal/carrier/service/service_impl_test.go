package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/gestorhub/gestor/internal/carrier/domain"
	"github.com/gestorhub/gestor/internal/carrier/repository"
	"github.com/gestorhub/gestor/internal/requestctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Carrier{}); err != nil {
		t.Fatalf("migrate: %v", err)
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

	return svc, ctx
}

func TestCarrierLifecycle(t *testing.T) {
	svc, ctx := setup(t)

	carrier, err := svc.Create(ctx, domain.CreateCarrierRequest{
		Name:  "Transportadora Rápida",
		Phone: "11988887777",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !carrier.Active {
		t.Fatal("expected active carrier")
	}

	active := false
	updated, err := svc.Update(ctx, domain.UpdateCarrierRequest{
		ID:     carrier.ID.String(),
		Active: &active,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Active {
		t.Fatal("expected deactivated carrier")
	}

	if err := svc.Delete(ctx, carrier.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, carrier.ID.String()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateCarrierRequiresName(t *testing.T) {
	svc, ctx := setup(t)

	if _, err := svc.Create(ctx, domain.CreateCarrierRequest{Name: "  "}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
}

func TestListCarriersBySearch(t *testing.T) {
	svc, ctx := setup(t)

	for _, name := range []string{"Loggi", "Correios", "Jadlog"} {
		if _, err := svc.Create(ctx, domain.CreateCarrierRequest{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	resp, err := svc.List(ctx, domain.ListCarrierRequest{Search: "log"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Meta.Total != 2 {
		t.Fatalf("expected 2 carriers, got %d", resp.Meta.Total)
	}
}
