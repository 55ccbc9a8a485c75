package books

import (
	"database/sql"
	"time"
)

// Book is one row of the books table. AvailableCopies is the sole
// availability signal and is mutated only by the borrow workflows.
type Book struct {
	BookID          int64
	Title           string
	Author          string
	ISBN            string
	PublishedYear   int
	TotalCopies     int
	AvailableCopies int
	LibraryID       sql.NullInt64
	CreatedAt       time.Time
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	AvailableOnly bool
	LibraryID     *int64
	ISBN          string
}
