// Package seed loads a small demo dataset for local development:
// two branches, a handful of books, one member with a linked account,
// and a staff login. Running it twice is a no-op.
package seed

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"libris-backend/internal/platform/auth"
	"libris-backend/internal/platform/db"
)

type Seeder struct {
	db  *sql.DB
	log *zap.Logger
}

func New(db *sql.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// Run inserts the demo data. Every insert checks for its natural key
// first, so reruns and boot-time seeding are safe.
func (s *Seeder) Run(ctx context.Context) error {
	mainID, err := s.ensureLibrary(ctx, "Central Library", "1 Main Street", "Main branch")
	if err != nil {
		return err
	}
	annexID, err := s.ensureLibrary(ctx, "Riverside Annex", "42 River Road", "")
	if err != nil {
		return err
	}

	seedBooks := []struct {
		title, author, isbn string
		year, copies        int
		libraryID           int64
	}{
		{"The Go Programming Language", "Alan A. A. Donovan", "9780134190440", 2015, 3, mainID},
		{"Designing Data-Intensive Applications", "Martin Kleppmann", "9781449373320", 2017, 2, mainID},
		{"The Mythical Man-Month", "Frederick P. Brooks Jr.", "9780201835953", 1995, 1, annexID},
		{"Structure and Interpretation of Computer Programs", "Harold Abelson", "9780262510875", 1996, 2, annexID},
	}
	for _, b := range seedBooks {
		if err := s.ensureBook(ctx, b.title, b.author, b.isbn, b.year, b.copies, b.libraryID); err != nil {
			return err
		}
	}

	memberID, err := s.ensureMember(ctx, "Demo Reader", "reader@example.com", "+1-555-0100")
	if err != nil {
		return err
	}

	if err := s.ensureDemoBorrow(ctx, memberID, seedBooks[0].isbn); err != nil {
		return err
	}

	if err := s.ensureAccount(ctx, "reader", "reader-pass", auth.RoleMember, memberID); err != nil {
		return err
	}
	if err := s.ensureAccount(ctx, "librarian", "librarian-pass", auth.RoleLibrarian, ""); err != nil {
		return err
	}
	if err := s.ensureAccount(ctx, "admin", "admin-pass", auth.RoleAdmin, ""); err != nil {
		return err
	}

	s.log.Info("seed data loaded")
	return nil
}

func (s *Seeder) ensureLibrary(ctx context.Context, name, location, description string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT library_id FROM libraries WHERE name = ?`, name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var desc any
	if description != "" {
		desc = description
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO libraries (name, location, description, created_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP(6))`,
		name, location, desc,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Seeder) ensureBook(ctx context.Context, title, author, isbn string, year, copies int, libraryID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT book_id FROM books WHERE isbn = ?`, isbn,
	).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO books
		 (title, author, isbn, published_year, total_copies, available_copies, library_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP(6))`,
		title, author, isbn, year, copies, copies, libraryID,
	)
	return err
}

func (s *Seeder) ensureMember(ctx context.Context, name, email, phone string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT member_id FROM members WHERE email = ?`, email,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	now := time.Now().UTC()
	mid, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO members (member_id, name, email, phone, membership_date, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP(6))`,
		mid.String(), name, email, phone, now,
	)
	if err != nil {
		return "", err
	}
	return mid.String(), nil
}

// ensureDemoBorrow opens one active loan for the demo member so a
// fresh environment has ledger data to look at. Skipped once any
// borrow record exists.
func (s *Seeder) ensureDemoBorrow(ctx context.Context, memberID, isbn string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM borrow_records`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var bookID int64
		err := tx.QueryRowContext(ctx,
			`SELECT book_id FROM books WHERE isbn = ? AND available_copies > 0 FOR UPDATE`, isbn,
		).Scan(&bookID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		mid, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO borrow_records
			 (record_ulid, book_id, member_id, borrow_date, due_date, returned, renewal_count, notes,
			  created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 0, 0, ?, CURRENT_TIMESTAMP(6), CURRENT_TIMESTAMP(6))`,
			mid.String(), bookID, memberID, now, now.AddDate(0, 0, 14), "First Borrow",
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE books SET available_copies = available_copies - 1 WHERE book_id = ?`, bookID,
		)
		return err
	})
}

func (s *Seeder) ensureAccount(ctx context.Context, id, password, role, memberID string) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE id = ?`, id,
	).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var mid any
	if memberID != "" {
		mid = memberID
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, password_hash, role, member_id, is_disabled, created_at)
		 VALUES (?, ?, ?, ?, 0, CURRENT_TIMESTAMP(6))`,
		id, string(hash), role, mid,
	)
	return err
}
