package libraries

import (
	"context"
	"database/sql"
	"strings"

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

func (s *Service) Create(ctx context.Context, in CreateLibraryRequest) (*LibraryResponse, error) {
	name := norm.NFC.String(strings.TrimSpace(in.Name))
	location := strings.TrimSpace(in.Location)
	if name == "" || location == "" {
		return nil, apierr.Invalid("name and location are required")
	}

	l := &Library{Name: name, Location: location}
	if in.Description != nil && *in.Description != "" {
		l.Description = sql.NullString{String: *in.Description, Valid: true}
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, apierr.Wrap(err)
	}

	s.log.Info("library created", zap.Int64("library_id", l.LibraryID))
	resp := toResponse(l)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LibraryResponse, error) {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(l)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]LibraryResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	out := make([]LibraryResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateLibraryRequest) (*LibraryResponse, error) {
	if in.Name != nil {
		n := norm.NFC.String(strings.TrimSpace(*in.Name))
		if n == "" {
			return nil, apierr.Invalid("name must not be empty")
		}
		in.Name = &n
	}
	if in.Location != nil {
		loc := strings.TrimSpace(*in.Location)
		if loc == "" {
			return nil, apierr.Invalid("location must not be empty")
		}
		in.Location = &loc
	}

	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, apierr.Wrap(err)
	}
	l, err := s.store.Update(ctx, id, in)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(l)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.CountBooks(ctx, id)
	if err != nil {
		return apierr.Wrap(err)
	}
	if n > 0 {
		return apierr.InvalidState("library still holds books")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apierr.Wrap(err)
	}
	return nil
}
