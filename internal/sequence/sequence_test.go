package sequence

import (
	"context"
	"fmt"
	"testing"
	"time"

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
	if err := db.Exec(`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		number TEXT NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create orders: %v", err)
	}
	return db
}

func TestPrefixes(t *testing.T) {
	at := time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)

	if got := OrderPrefix(at); got != "2608" {
		t.Fatalf("order prefix: %s", got)
	}
	if got := ServiceOrderPrefix(at); got != "OS2608" {
		t.Fatalf("service order prefix: %s", got)
	}
}

func TestFormatPadding(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "26080001"},
		{42, "26080042"},
		{9999, "26089999"},
		{10000, "260810000"},
	}
	for _, tc := range cases {
		if got := Format("2608", tc.seq); got != tc.want {
			t.Fatalf("format %d: got %s, want %s", tc.seq, got, tc.want)
		}
	}
}

func TestNextStartsAtOne(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	companyID := node.Generate()

	number, err := Next(context.Background(), db, "orders", companyID, "2608")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number != "26080001" {
		t.Fatalf("expected 26080001, got %s", number)
	}
}

func TestNextIncrementsWithinPrefix(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	companyID := node.Generate()
	otherCompany := node.Generate()

	seed := []struct {
		company snowflake.ID
		number  string
	}{
		{companyID, "26080001"},
		{companyID, "26080007"},
		{companyID, "25120099"},
		{otherCompany, "26080042"},
	}
	for _, row := range seed {
		if err := db.Exec(
			`INSERT INTO orders (id, company_id, number) VALUES (?, ?, ?)`,
			node.Generate(), row.company, row.number,
		).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	number, err := Next(context.Background(), db, "orders", companyID, "2608")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	// Other companies and other months must not bleed into the sequence.
	if number != "26080008" {
		t.Fatalf("expected 26080008, got %s", number)
	}
}

func TestNextWidensPastFourDigits(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	companyID := node.Generate()

	if err := db.Exec(
		`INSERT INTO orders (id, company_id, number) VALUES (?, ?, ?)`,
		node.Generate(), companyID, "26089999",
	).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	number, err := Next(context.Background(), db, "orders", companyID, "2608")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number != "260810000" {
		t.Fatalf("expected 260810000, got %s", number)
	}
}
