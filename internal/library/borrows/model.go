package borrows

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// BorrowRecord is one row of the borrow_records ledger, optionally
// joined with the book title and member name. Records are never
// deleted; returned=true is the terminal state.
type BorrowRecord struct {
	RecordID     int64
	RecordULID   string
	BookID       int64
	MemberID     string
	BorrowDate   time.Time
	DueDate      time.Time
	ReturnDate   sql.NullTime
	Returned     bool
	FineAmount   decimal.NullDecimal
	RenewalCount int
	Notes        sql.NullString

	// joined columns
	BookTitle  string
	MemberName string
}

// Borrower is the directory view the engine needs: identity, display
// name and the active flag.
type Borrower struct {
	ID     string
	Name   string
	Active bool
}

// BookInfo is the catalog view the engine needs.
type BookInfo struct {
	ID            int64
	Title         string
	Author        string
	ISBN          string
	PublishedYear int
	Available     int
	Total         int
}
