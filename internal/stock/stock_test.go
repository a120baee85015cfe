package stock

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Movement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE TABLE products (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create products: %v", err)
	}
	return db
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return node
}

func seedProduct(t *testing.T, db *gorm.DB, companyID, productID snowflake.ID, stock int64) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO products (id, company_id, stock) VALUES (?, ?, ?)`,
		productID, companyID, stock,
	).Error
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func currentStock(t *testing.T, db *gorm.DB, productID snowflake.ID) int64 {
	t.Helper()
	var stock int64
	if err := db.Raw(`SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func TestApplyIncrement(t *testing.T) {
	db := setupDB(t)
	node := mustNode(t)
	companyID := node.Generate()
	productID := node.Generate()
	seedProduct(t, db, companyID, productID, 5)

	if err := Apply(context.Background(), db, node, companyID, productID, 3, ReasonAdjustment, "restock"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := currentStock(t, db, productID); got != 8 {
		t.Fatalf("expected stock 8, got %d", got)
	}

	var movements []Movement
	if err := db.Where("product_id = ?", productID).Find(&movements).Error; err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Quantity != 3 || movements[0].Reason != ReasonAdjustment {
		t.Fatalf("unexpected movement %+v", movements[0])
	}
}

func TestApplyDecrementGuardsAgainstNegative(t *testing.T) {
	db := setupDB(t)
	node := mustNode(t)
	companyID := node.Generate()
	productID := node.Generate()
	seedProduct(t, db, companyID, productID, 2)

	err := Apply(context.Background(), db, node, companyID, productID, -3, ReasonSale, "T0001")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := currentStock(t, db, productID); got != 2 {
		t.Fatalf("stock changed on failed apply: %d", got)
	}

	var count int64
	if err := db.Model(&Movement{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no movements, got %d", count)
	}
}

func TestApplyDecrementToZero(t *testing.T) {
	db := setupDB(t)
	node := mustNode(t)
	companyID := node.Generate()
	productID := node.Generate()
	seedProduct(t, db, companyID, productID, 4)

	if err := Apply(context.Background(), db, node, companyID, productID, -4, ReasonSale, "T0002"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := currentStock(t, db, productID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestApplyUnknownProduct(t *testing.T) {
	db := setupDB(t)
	node := mustNode(t)

	err := Apply(context.Background(), db, node, node.Generate(), node.Generate(), -1, ReasonSale, "")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestApplyZeroDeltaIsNoop(t *testing.T) {
	db := setupDB(t)
	node := mustNode(t)
	companyID := node.Generate()
	productID := node.Generate()
	seedProduct(t, db, companyID, productID, 1)

	if err := Apply(context.Background(), db, node, companyID, productID, 0, ReasonAdjustment, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var count int64
	if err := db.Model(&Movement{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no movements, got %d", count)
	}
}
