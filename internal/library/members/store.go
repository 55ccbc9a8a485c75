package members

import (
	"context"
	"database/sql"
	"strings"

	"libris-backend/internal/platform/apierr"
)

const memberColumns = `member_id, name, email, phone, membership_date, is_active, created_at`

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func scanMember(row *sql.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.MemberID, &m.Name, &m.Email, &m.Phone,
		&m.MembershipDate, &m.IsActive, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierr.NotFound("member not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Insert(ctx context.Context, m *Member) error {
	const q = `
	INSERT INTO members (member_id, name, email, phone, membership_date, is_active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP(6))`
	_, err := s.db.ExecContext(ctx, q, m.MemberID, m.Name, m.Email, m.Phone, m.MembershipDate, m.IsActive)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE member_id = ?`
	return scanMember(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members WHERE email = ?`
	return scanMember(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) List(ctx context.Context) ([]Member, error) {
	const q = `SELECT ` + memberColumns + ` FROM members ORDER BY membership_date`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(
			&m.MemberID, &m.Name, &m.Email, &m.Phone,
			&m.MembershipDate, &m.IsActive, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, in UpdateMemberRequest) (*Member, error) {
	sets := []string{}
	args := []any{}
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *in.Email)
	}
	if in.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *in.Phone)
	}
	if in.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *in.IsActive)
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	q := `UPDATE members SET ` + strings.Join(sets, ", ") + ` WHERE member_id = ?`
	args = append(args, id)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE member_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("member not found")
	}
	return nil
}

func (s *Store) CountActiveBorrows(ctx context.Context, memberID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE member_id = ? AND returned = 0`, memberID,
	).Scan(&n)
	return n, err
}
