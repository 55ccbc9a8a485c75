package borrows

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultBorrowDays = 14
	maxRenewalDays    = 30
	maxRenewalCount   = 3
	maxBorrowLimit    = 5
)

var finePerDay = decimal.RequireFromString("0.50")

// overdueDays returns the number of whole calendar days now is past
// due. Partial days truncate; zero when not overdue.
func overdueDays(now, due time.Time) int {
	d := now.Sub(due)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// fineFor computes the fine owed at time now for a record due at due.
// Decimal arithmetic only, so repeated calculations never drift.
func fineFor(now, due time.Time) decimal.Decimal {
	days := overdueDays(now, due)
	if days == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(days)).Mul(finePerDay)
}

// appendNote concatenates a new audit note onto the existing free-text
// notes, pipe-delimited, preserving history.
func appendNote(existing sql.NullString, note string) sql.NullString {
	if !existing.Valid || existing.String == "" {
		return sql.NullString{String: note, Valid: true}
	}
	return sql.NullString{String: existing.String + " | " + note, Valid: true}
}
