package books

import (
	"context"
	"database/sql"
	"strings"

	"libris-backend/internal/platform/apierr"
)

const bookColumns = `book_id, title, author, isbn, published_year, total_copies, available_copies, library_id, created_at`

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func scanBook(row *sql.Row) (*Book, error) {
	var b Book
	err := row.Scan(
		&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.PublishedYear,
		&b.TotalCopies, &b.AvailableCopies, &b.LibraryID, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierr.NotFound("book not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Insert(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books
	(title, author, isbn, published_year, total_copies, available_copies, library_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP(6))`

	var libraryID any
	if b.LibraryID.Valid {
		libraryID = b.LibraryID.Int64
	}
	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.PublishedYear, b.TotalCopies, b.AvailableCopies, libraryID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.BookID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE book_id = ?`
	return scanBook(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE isbn = ?`
	return scanBook(s.db.QueryRowContext(ctx, q, isbn))
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Book, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + bookColumns + ` FROM books WHERE 1=1`)

	args := []any{}
	if f.AvailableOnly {
		sb.WriteString(` AND available_copies > 0`)
	}
	if f.LibraryID != nil {
		sb.WriteString(` AND library_id = ?`)
		args = append(args, *f.LibraryID)
	}
	if f.ISBN != "" {
		sb.WriteString(` AND isbn = ?`)
		args = append(args, f.ISBN)
	}
	sb.WriteString(` ORDER BY book_id`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.PublishedYear,
			&b.TotalCopies, &b.AvailableCopies, &b.LibraryID, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields. total_copies changes shift
// available_copies by the same delta inside one statement, and the
// WHERE clause refuses any shrink that would take available_copies
// negative, so a borrow racing the update cannot corrupt the count.
func (s *Store) Update(ctx context.Context, id int64, in UpdateBookRequest) (*Book, error) {
	q, args := buildUpdateQuery(id, in)
	if q == "" {
		return s.GetByID(ctx, id)
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		cur, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// The row exists, so zero rows means either a no-op update or
		// the copies guard refusing the shrink.
		if refusedCopiesShrink(cur, in) {
			return nil, apierr.Invalid("total_copies cannot drop below the number of borrowed copies")
		}
		return cur, nil
	}
	return s.GetByID(ctx, id)
}

func buildUpdateQuery(id int64, in UpdateBookRequest) (string, []any) {
	sets := []string{}
	args := []any{}
	if in.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *in.Title)
	}
	if in.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *in.Author)
	}
	if in.PublishedYear != nil {
		sets = append(sets, "published_year = ?")
		args = append(args, *in.PublishedYear)
	}
	if in.TotalCopies != nil {
		sets = append(sets, "available_copies = available_copies + (? - total_copies)", "total_copies = ?")
		args = append(args, *in.TotalCopies, *in.TotalCopies)
	}
	if in.LibraryID != nil {
		sets = append(sets, "library_id = ?")
		args = append(args, *in.LibraryID)
	}
	if len(sets) == 0 {
		return "", nil
	}

	q := `UPDATE books SET ` + strings.Join(sets, ", ") + ` WHERE book_id = ?`
	args = append(args, id)
	if in.TotalCopies != nil {
		q += ` AND available_copies + (? - total_copies) >= 0`
		args = append(args, *in.TotalCopies)
	}
	return q, args
}

func refusedCopiesShrink(cur *Book, in UpdateBookRequest) bool {
	return in.TotalCopies != nil && cur.TotalCopies != *in.TotalCopies
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("book not found")
	}
	return nil
}

func (s *Store) CountActiveBorrows(ctx context.Context, bookID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE book_id = ? AND returned = 0`, bookID,
	).Scan(&n)
	return n, err
}
