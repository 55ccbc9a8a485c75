package libraries

import (
	"context"
	"database/sql"
	"strings"

	"libris-backend/internal/platform/apierr"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, l *Library) error {
	const q = `
	INSERT INTO libraries (name, location, description, created_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP(6))`

	var desc any
	if l.Description.Valid {
		desc = l.Description.String
	}
	res, err := s.db.ExecContext(ctx, q, l.Name, l.Location, desc)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.LibraryID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Library, error) {
	const q = `SELECT library_id, name, location, description, created_at FROM libraries WHERE library_id = ?`
	var l Library
	err := s.db.QueryRowContext(ctx, q, id).Scan(&l.LibraryID, &l.Name, &l.Location, &l.Description, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierr.NotFound("library not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) List(ctx context.Context) ([]Library, error) {
	const q = `SELECT library_id, name, location, description, created_at FROM libraries ORDER BY library_id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Library
	for rows.Next() {
		var l Library
		if err := rows.Scan(&l.LibraryID, &l.Name, &l.Location, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, in UpdateLibraryRequest) (*Library, error) {
	sets := []string{}
	args := []any{}
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *in.Location)
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	q := `UPDATE libraries SET ` + strings.Join(sets, ", ") + ` WHERE library_id = ?`
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM libraries WHERE library_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("library not found")
	}
	return nil
}

func (s *Store) CountBooks(ctx context.Context, libraryID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE library_id = ?`, libraryID,
	).Scan(&n)
	return n, err
}
