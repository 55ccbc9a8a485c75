package books

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"libris-backend/internal/platform/apierr"
)

type Service struct {
	store *Store
	log   *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	return &Service{store: NewStore(db), log: log}
}

// cleanText trims and NFC-normalizes user supplied text so equal
// titles compare equal regardless of the client's Unicode form.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (s *Service) Create(ctx context.Context, in CreateBookRequest) (*BookResponse, error) {
	title := cleanText(in.Title)
	author := cleanText(in.Author)
	isbn := strings.TrimSpace(in.ISBN)
	if title == "" || author == "" || isbn == "" {
		return nil, apierr.Invalid("title, author and isbn are required")
	}
	if in.TotalCopies <= 0 {
		return nil, apierr.Invalid("total_copies must be > 0")
	}

	b := &Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		PublishedYear:   in.PublishedYear,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
	}
	if in.LibraryID != nil {
		b.LibraryID = sql.NullInt64{Int64: *in.LibraryID, Valid: true}
	}

	if err := s.store.Insert(ctx, b); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			switch me.Number {
			case 1062: // duplicate key
				return nil, apierr.Conflict("isbn already exists")
			case 1452: // foreign key constraint fails
				return nil, apierr.Invalid("invalid library_id")
			}
		}
		return nil, apierr.Wrap(err)
	}

	s.log.Info("book created", zap.Int64("book_id", b.BookID), zap.String("isbn", b.ISBN))
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) GetByISBN(ctx context.Context, isbn string) (*BookResponse, error) {
	b, err := s.store.GetByISBN(ctx, strings.TrimSpace(isbn))
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]BookResponse, error) {
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	out := make([]BookResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateBookRequest) (*BookResponse, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	if in.Title != nil {
		t := cleanText(*in.Title)
		if t == "" {
			return nil, apierr.Invalid("title must not be empty")
		}
		in.Title = &t
	}
	if in.Author != nil {
		a := cleanText(*in.Author)
		if a == "" {
			return nil, apierr.Invalid("author must not be empty")
		}
		in.Author = &a
	}
	if in.TotalCopies != nil {
		delta := *in.TotalCopies - current.TotalCopies
		if *in.TotalCopies <= 0 {
			return nil, apierr.Invalid("total_copies must be > 0")
		}
		if current.AvailableCopies+delta < 0 {
			return nil, apierr.Invalid("total_copies cannot drop below the number of borrowed copies")
		}
	}

	b, err := s.store.Update(ctx, id, in)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(b)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.CountActiveBorrows(ctx, id)
	if err != nil {
		return apierr.Wrap(err)
	}
	if n > 0 {
		return apierr.InvalidState("book has active borrow records")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apierr.Wrap(err)
	}
	s.log.Info("book deleted", zap.Int64("book_id", id))
	return nil
}
