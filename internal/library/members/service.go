package members

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"libris-backend/internal/platform/apierr"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Service struct {
	store *Store
	clock Clock
	id    IDGen
	log   *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	return &Service{
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
		log:   log,
	}
}

func (s *Service) Create(ctx context.Context, in CreateMemberRequest) (*MemberResponse, error) {
	name := norm.NFC.String(strings.TrimSpace(in.Name))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, apierr.Invalid("name and email are required")
	}

	id, err := s.id.New()
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	m := &Member{
		MemberID:       id,
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		MembershipDate: s.clock.Now(),
		IsActive:       true,
	}
	if err := s.store.Insert(ctx, m); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("email already exists")
		}
		return nil, apierr.Wrap(err)
	}

	s.log.Info("member created", zap.String("member_id", m.MemberID))
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*MemberResponse, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*MemberResponse, error) {
	m, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]MemberResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	out := make([]MemberResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateMemberRequest) (*MemberResponse, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, apierr.Wrap(err)
	}
	if in.Name != nil {
		n := norm.NFC.String(strings.TrimSpace(*in.Name))
		if n == "" {
			return nil, apierr.Invalid("name must not be empty")
		}
		in.Name = &n
	}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		if e == "" {
			return nil, apierr.Invalid("email must not be empty")
		}
		in.Email = &e
	}

	m, err := s.store.Update(ctx, id, in)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("email already exists")
		}
		return nil, apierr.Wrap(err)
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.CountActiveBorrows(ctx, id)
	if err != nil {
		return apierr.Wrap(err)
	}
	if n > 0 {
		return apierr.InvalidState("member has active borrow records")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apierr.Wrap(err)
	}
	s.log.Info("member deleted", zap.String("member_id", id))
	return nil
}
