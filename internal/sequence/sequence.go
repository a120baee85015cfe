package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Numbers are a month-scoped prefix followed by a sequence padded to
// four digits. The padding widens once a company passes 9999 documents
// in one month, so ordering within the prefix stays lexicographic up
// to that point and correctness never depends on it.
const seqWidth = 4

// OrderPrefix returns the order number prefix for the given time, e.g.
// "2608" for August 2026.
func OrderPrefix(t time.Time) string {
	return t.Format("0601")
}

// ServiceOrderPrefix returns the service order number prefix, e.g. "OS2608".
func ServiceOrderPrefix(t time.Time) string {
	return "OS" + t.Format("0601")
}

// Format renders a document number from its prefix and sequence.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s%0*d", prefix, seqWidth, seq)
}

// Next computes the next document number for a company within the
// prefix scope. It must run inside the same transaction that inserts
// the row; the caller retries on a duplicate key error since two
// transactions can read the same maximum concurrently. The unique
// index on (company_id, number) makes the race safe.
func Next(ctx context.Context, tx *gorm.DB, table string, companyID snowflake.ID, prefix string) (string, error) {
	var max int64
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(CAST(SUBSTR(number, %d) AS INTEGER)), 0) FROM %s WHERE company_id = ? AND number LIKE ?`,
		len(prefix)+1,
		table,
	)
	err := tx.WithContext(ctx).Raw(query, companyID, prefix+"%").Scan(&max).Error
	if err != nil {
		return "", err
	}
	return Format(prefix, max+1), nil
}
