package borrows

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"libris-backend/internal/platform/apierr"
	"libris-backend/internal/platform/db"
)

// Store is the persistence contract of the borrowing engine. The Exec*
// methods are all-or-nothing: ledger row and stock counter move inside
// one transaction or not at all.
type Store interface {
	// FindBorrower returns (nil, nil) when the member does not exist.
	FindBorrower(ctx context.Context, memberID string) (*Borrower, error)
	// GetBook returns (nil, nil) when the book does not exist.
	GetBook(ctx context.Context, bookID int64) (*BookInfo, error)

	ExecBorrow(ctx context.Context, rec *BorrowRecord) error
	ExecReturn(ctx context.Context, bookID int64, memberID string, returnedAt time.Time, notes string) (*BorrowRecord, error)
	ExecRenew(ctx context.Context, recordID int64, additionalDays int, now time.Time) (*BorrowRecord, error)

	GetByID(ctx context.Context, recordID int64) (*BorrowRecord, error)
	ListByMember(ctx context.Context, memberID string, activeOnly bool) ([]BorrowRecord, error)
	ListByBook(ctx context.Context, bookID int64, activeOnly bool) ([]BorrowRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]BorrowRecord, error)
}

const recordColumns = `
	r.record_id, r.record_ulid, r.book_id, r.member_id,
	r.borrow_date, r.due_date, r.return_date, r.returned,
	r.fine_amount, r.renewal_count, r.notes,
	b.title, m.name`

const recordFrom = `
	FROM borrow_records r
	JOIN books b ON b.book_id = r.book_id
	JOIN members m ON m.member_id = r.member_id`

type sqlStore struct{ db *sql.DB }

func NewStore(conn *sql.DB) Store { return &sqlStore{db: conn} }

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (*BorrowRecord, error) {
	var r BorrowRecord
	err := row.Scan(
		&r.RecordID, &r.RecordULID, &r.BookID, &r.MemberID,
		&r.BorrowDate, &r.DueDate, &r.ReturnDate, &r.Returned,
		&r.FineAmount, &r.RenewalCount, &r.Notes,
		&r.BookTitle, &r.MemberName,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *sqlStore) FindBorrower(ctx context.Context, memberID string) (*Borrower, error) {
	const q = `SELECT member_id, name, is_active FROM members WHERE member_id = ?`
	var b Borrower
	err := s.db.QueryRowContext(ctx, q, memberID).Scan(&b.ID, &b.Name, &b.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *sqlStore) GetBook(ctx context.Context, bookID int64) (*BookInfo, error) {
	const q = `
	SELECT book_id, title, author, isbn, published_year, available_copies, total_copies
	FROM books WHERE book_id = ?`
	var b BookInfo
	err := s.db.QueryRowContext(ctx, q, bookID).Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublishedYear, &b.Available, &b.Total,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ExecBorrow creates the ledger row and decrements the stock counter
// atomically. The book row is locked first so two concurrent borrows of
// the last copy serialize: one wins, the other sees zero availability.
func (s *sqlStore) ExecBorrow(ctx context.Context, rec *BorrowRecord) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var title string
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT title, available_copies FROM books WHERE book_id = ? FOR UPDATE`,
			rec.BookID,
		).Scan(&title, &available)
		if err == sql.ErrNoRows {
			return apierr.NotFound("book not found")
		}
		if err != nil {
			return err
		}
		if available <= 0 {
			return apierr.InvalidState(fmt.Sprintf("no copies available for '%s'", title))
		}

		var dup int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM borrow_records WHERE book_id = ? AND member_id = ? AND returned = 0`,
			rec.BookID, rec.MemberID,
		).Scan(&dup)
		if err != nil {
			return err
		}
		if dup > 0 {
			return apierr.Conflict(fmt.Sprintf("member already has an active borrow of '%s'", title))
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO borrow_records
			(record_ulid, book_id, member_id, borrow_date, due_date, returned, renewal_count, notes,
			 created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, 0, ?, CURRENT_TIMESTAMP(6), CURRENT_TIMESTAMP(6))`,
			rec.RecordULID, rec.BookID, rec.MemberID, rec.BorrowDate, rec.DueDate, rec.Notes,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		rec.RecordID = id
		rec.BookTitle = title

		upd, err := tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies - 1
			 WHERE book_id = ? AND available_copies > 0`,
			rec.BookID,
		)
		if err != nil {
			return err
		}
		if aff, _ := upd.RowsAffected(); aff == 0 {
			return apierr.InvalidState(fmt.Sprintf("no copies available for '%s'", title))
		}
		return nil
	})
}

// ExecReturn closes the active record for (book, member), stamps the
// fine when overdue, and returns the copy to stock. Increment is
// guarded by total_copies so the counter can never overshoot.
func (s *sqlStore) ExecReturn(ctx context.Context, bookID int64, memberID string, returnedAt time.Time, notes string) (*BorrowRecord, error) {
	var out *BorrowRecord
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		rec, err := scanRecord(tx.QueryRowContext(ctx,
			`SELECT `+recordColumns+recordFrom+`
			 WHERE r.book_id = ? AND r.member_id = ? AND r.returned = 0
			 FOR UPDATE`,
			bookID, memberID,
		))
		if err == sql.ErrNoRows {
			return apierr.NotFound("no active borrow for this book and member")
		}
		if err != nil {
			return err
		}

		rec.ReturnDate = sql.NullTime{Time: returnedAt, Valid: true}
		rec.Returned = true
		if fine := fineFor(returnedAt, rec.DueDate); fine.IsPositive() {
			rec.FineAmount.Decimal = fine
			rec.FineAmount.Valid = true
		}
		if notes != "" {
			rec.Notes = appendNote(rec.Notes, "Return notes: "+notes)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE borrow_records
			SET return_date = ?, returned = 1, fine_amount = ?, notes = ?,
			    updated_at = CURRENT_TIMESTAMP(6)
			WHERE record_id = ?`,
			rec.ReturnDate, rec.FineAmount, rec.Notes, rec.RecordID,
		)
		if err != nil {
			return err
		}

		upd, err := tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies + 1
			 WHERE book_id = ? AND available_copies < total_copies`,
			bookID,
		)
		if err != nil {
			return err
		}
		if aff, _ := upd.RowsAffected(); aff == 0 {
			return apierr.Storage(fmt.Errorf("stock counter out of range for book %d", bookID))
		}

		out = rec
		return nil
	})
	return out, err
}

// ExecRenew extends the due date of an active, not-yet-overdue record.
// The checks run under the row lock so a concurrent return cannot slip
// between the read and the update.
func (s *sqlStore) ExecRenew(ctx context.Context, recordID int64, additionalDays int, now time.Time) (*BorrowRecord, error) {
	var out *BorrowRecord
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		rec, err := scanRecord(tx.QueryRowContext(ctx,
			`SELECT `+recordColumns+recordFrom+` WHERE r.record_id = ? FOR UPDATE`,
			recordID,
		))
		if err == sql.ErrNoRows {
			return apierr.NotFound("borrow record not found")
		}
		if err != nil {
			return err
		}

		if rec.Returned {
			return apierr.InvalidState("cannot renew a returned borrow")
		}
		if now.After(rec.DueDate) {
			return apierr.InvalidState("cannot renew an overdue borrow")
		}

		// Renewal yields to waiting readers: when every other copy is
		// out, the book goes back instead of being extended.
		var available int
		err = tx.QueryRowContext(ctx,
			`SELECT available_copies FROM books WHERE book_id = ? FOR UPDATE`,
			rec.BookID,
		).Scan(&available)
		if err != nil {
			return err
		}
		if available <= 0 {
			return apierr.InvalidState("cannot renew while all other copies are borrowed")
		}

		if rec.RenewalCount >= maxRenewalCount {
			return apierr.InvalidState("renewal limit reached")
		}

		newDue := rec.DueDate.AddDate(0, 0, additionalDays)
		rec.DueDate = newDue
		rec.RenewalCount++
		rec.Notes = appendNote(rec.Notes, fmt.Sprintf(
			"Renewed on %s, new due date: %s",
			now.Format("2006-01-02"), newDue.Format("2006-01-02"),
		))

		_, err = tx.ExecContext(ctx, `
			UPDATE borrow_records
			SET due_date = ?, renewal_count = ?, notes = ?, updated_at = CURRENT_TIMESTAMP(6)
			WHERE record_id = ?`,
			rec.DueDate, rec.RenewalCount, rec.Notes, rec.RecordID,
		)
		if err != nil {
			return err
		}

		out = rec
		return nil
	})
	return out, err
}

func (s *sqlStore) GetByID(ctx context.Context, recordID int64) (*BorrowRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+recordFrom+` WHERE r.record_id = ?`, recordID,
	))
	if err == sql.ErrNoRows {
		return nil, apierr.NotFound("borrow record not found")
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *sqlStore) ListByMember(ctx context.Context, memberID string, activeOnly bool) ([]BorrowRecord, error) {
	q := `SELECT ` + recordColumns + recordFrom + ` WHERE r.member_id = ?`
	if activeOnly {
		q += ` AND r.returned = 0`
	}
	q += ` ORDER BY r.borrow_date DESC, r.record_id DESC`
	return s.list(ctx, q, memberID)
}

func (s *sqlStore) ListByBook(ctx context.Context, bookID int64, activeOnly bool) ([]BorrowRecord, error) {
	q := `SELECT ` + recordColumns + recordFrom + ` WHERE r.book_id = ?`
	if activeOnly {
		q += ` AND r.returned = 0`
	}
	q += ` ORDER BY r.borrow_date DESC, r.record_id DESC`
	return s.list(ctx, q, bookID)
}

func (s *sqlStore) ListOverdue(ctx context.Context, now time.Time) ([]BorrowRecord, error) {
	q := `SELECT ` + recordColumns + recordFrom + `
	 WHERE r.returned = 0 AND r.due_date < ?
	 ORDER BY r.due_date ASC, r.record_id ASC`
	return s.list(ctx, q, now)
}

func (s *sqlStore) list(ctx context.Context, q string, args ...any) ([]BorrowRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BorrowRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
