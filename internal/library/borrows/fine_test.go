package borrows

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverdueDays(t *testing.T) {
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before due", due.Add(-48 * time.Hour), 0},
		{"exactly due", due, 0},
		{"eleven hours late", due.Add(11 * time.Hour), 0},
		{"one day late", due.Add(24 * time.Hour), 1},
		{"partial day truncates", due.Add(24*time.Hour + 23*time.Hour), 1},
		{"six days late", due.Add(6 * 24 * time.Hour), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overdueDays(tt.now, due))
		})
	}
}

func TestFineFor(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, fineFor(due.Add(-time.Hour), due).IsZero())
	assert.Equal(t, "0.50", fineFor(due.Add(24*time.Hour), due).StringFixed(2))
	assert.Equal(t, "3.00", fineFor(due.Add(6*24*time.Hour), due).StringFixed(2))
	assert.Equal(t, "15.00", fineFor(due.Add(30*24*time.Hour), due).StringFixed(2))
}

func TestFineForNoDrift(t *testing.T) {
	// 0.1+0.2 style float drift must never show up in totals.
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	total := fineFor(due.Add(24*time.Hour), due)
	for i := 0; i < 9; i++ {
		total = total.Add(fineFor(due.Add(24*time.Hour), due))
	}
	assert.Equal(t, "5.00", total.StringFixed(2))
}

func TestAppendNote(t *testing.T) {
	got := appendNote(sql.NullString{}, "Return notes: damaged cover")
	assert.Equal(t, "Return notes: damaged cover", got.String)
	assert.True(t, got.Valid)

	got = appendNote(got, "Renewed on 2025-03-01, new due date: 2025-03-15")
	assert.Equal(t,
		"Return notes: damaged cover | Renewed on 2025-03-01, new due date: 2025-03-15",
		got.String,
	)
}
