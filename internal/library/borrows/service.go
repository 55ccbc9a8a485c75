package borrows

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"libris-backend/internal/platform/apierr"
	"libris-backend/internal/platform/auth"
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

// Actor identifies who is calling. Staff roles may act on any record;
// a member only on their own.
type Actor struct {
	MemberID string
	Role     string
}

func (a Actor) canActFor(memberID string) bool {
	return auth.IsStaff(a.Role) || (a.MemberID != "" && a.MemberID == memberID)
}

type Service struct {
	store Store
	clock Clock
	id    IDGen
	log   *zap.Logger
}

func NewService(conn *sql.DB, log *zap.Logger) *Service {
	return &Service{
		store: NewStore(conn),
		clock: realClock{},
		id:    ulidGen{},
		log:   log,
	}
}

// Borrow opens a ledger record and takes one copy out of stock.
// Eligibility beyond existence and active membership is advisory and
// lives in CanBorrow; callers that want the full policy check first.
func (s *Service) Borrow(ctx context.Context, in BorrowRequest) (*BorrowRecordResponse, error) {
	days := defaultBorrowDays
	if in.DurationDays != nil {
		if *in.DurationDays <= 0 {
			return nil, apierr.Invalid("duration_days must be positive")
		}
		days = *in.DurationDays
	}

	borrower, err := s.store.FindBorrower(ctx, in.MemberID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if borrower == nil {
		return nil, apierr.NotFound("member not found")
	}
	if !borrower.Active {
		return nil, apierr.Invalid("member account is inactive")
	}

	book, err := s.store.GetBook(ctx, in.BookID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if book == nil {
		return nil, apierr.NotFound("book not found")
	}

	ulidStr, err := s.id.New()
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	now := s.clock.Now()
	rec := &BorrowRecord{
		RecordULID: ulidStr,
		BookID:     in.BookID,
		MemberID:   in.MemberID,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, days),
		MemberName: borrower.Name,
	}
	if notes := norm.NFC.String(strings.TrimSpace(in.Notes)); notes != "" {
		rec.Notes = sql.NullString{String: notes, Valid: true}
	}

	if err := s.store.ExecBorrow(ctx, rec); err != nil {
		return nil, apierr.Wrap(err)
	}

	s.log.Info("book borrowed",
		zap.Int64("record_id", rec.RecordID),
		zap.Int64("book_id", rec.BookID),
		zap.String("member_id", rec.MemberID),
		zap.Time("due_date", rec.DueDate),
	)
	resp := toResponse(rec, now)
	return &resp, nil
}

func (s *Service) Return(ctx context.Context, in ReturnRequest) (*BorrowRecordResponse, error) {
	now := s.clock.Now()
	notes := norm.NFC.String(strings.TrimSpace(in.Notes))

	rec, err := s.store.ExecReturn(ctx, in.BookID, in.MemberID, now, notes)
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	fields := []zap.Field{
		zap.Int64("record_id", rec.RecordID),
		zap.Int64("book_id", rec.BookID),
		zap.String("member_id", rec.MemberID),
	}
	if rec.FineAmount.Valid {
		fields = append(fields, zap.String("fine_amount", rec.FineAmount.Decimal.StringFixed(2)))
	}
	s.log.Info("book returned", fields...)

	resp := toResponse(rec, now)
	return &resp, nil
}

// CalculateFine reports the fine for a record. A closed record answers
// with the amount frozen at return time; an open one with the amount
// accrued so far.
func (s *Service) CalculateFine(ctx context.Context, actor Actor, recordID int64) (*FineResponse, error) {
	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if !actor.canActFor(rec.MemberID) {
		return nil, apierr.PermissionDenied("not your borrow record")
	}

	fine := decimal.Zero
	if rec.Returned {
		if rec.FineAmount.Valid {
			fine = rec.FineAmount.Decimal
		}
	} else {
		fine = fineFor(s.clock.Now(), rec.DueDate)
	}
	return &FineResponse{RecordID: rec.RecordID, FineAmount: fine.StringFixed(2)}, nil
}

func (s *Service) Renew(ctx context.Context, actor Actor, recordID int64, in RenewRequest) (*BorrowRecordResponse, error) {
	if in.AdditionalDays <= 0 {
		return nil, apierr.Invalid("additional_days must be positive")
	}
	if in.AdditionalDays > maxRenewalDays {
		return nil, apierr.Invalid("additional_days must not exceed 30")
	}

	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if !actor.canActFor(rec.MemberID) {
		return nil, apierr.PermissionDenied("not your borrow record")
	}

	now := s.clock.Now()
	rec, err = s.store.ExecRenew(ctx, recordID, in.AdditionalDays, now)
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	s.log.Info("borrow renewed",
		zap.Int64("record_id", rec.RecordID),
		zap.Time("due_date", rec.DueDate),
		zap.Int("renewal_count", rec.RenewalCount),
	)
	resp := toResponse(rec, now)
	return &resp, nil
}

// CanBorrow evaluates the lending policy: active membership, nothing
// overdue, fewer than five books out. It is advisory; Borrow itself
// only enforces stock and the duplicate rule.
func (s *Service) CanBorrow(ctx context.Context, memberID string) (*CanBorrowResponse, error) {
	borrower, err := s.store.FindBorrower(ctx, memberID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if borrower == nil {
		return nil, apierr.NotFound("member not found")
	}

	resp := &CanBorrowResponse{MemberID: memberID}
	if !borrower.Active {
		return resp, nil
	}

	active, err := s.store.ListByMember(ctx, memberID, true)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if len(active) >= maxBorrowLimit {
		return resp, nil
	}
	now := s.clock.Now()
	for i := range active {
		if active[i].DueDate.Before(now) {
			return resp, nil
		}
	}
	resp.CanBorrow = true
	return resp, nil
}

func (s *Service) GetRecord(ctx context.Context, actor Actor, recordID int64) (*BorrowRecordResponse, error) {
	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if !actor.canActFor(rec.MemberID) {
		return nil, apierr.PermissionDenied("not your borrow record")
	}
	resp := toResponse(rec, s.clock.Now())
	return &resp, nil
}

func (s *Service) History(ctx context.Context, actor Actor, memberID string, activeOnly bool) ([]BorrowRecordResponse, error) {
	if !actor.canActFor(memberID) {
		return nil, apierr.PermissionDenied("not your borrow history")
	}
	items, err := s.store.ListByMember(ctx, memberID, activeOnly)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	return s.toResponses(items), nil
}

func (s *Service) BookHistory(ctx context.Context, bookID int64, activeOnly bool) ([]BorrowRecordResponse, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	if book == nil {
		return nil, apierr.NotFound("book not found")
	}
	items, err := s.store.ListByBook(ctx, bookID, activeOnly)
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	return s.toResponses(items), nil
}

func (s *Service) Overdue(ctx context.Context) ([]BorrowRecordResponse, error) {
	items, err := s.store.ListOverdue(ctx, s.clock.Now())
	if err != nil {
		return nil, apierr.Wrap(err)
	}
	return s.toResponses(items), nil
}

// BorrowedBooks lists the catalog view of everything a member has out,
// with each loan's due date.
func (s *Service) BorrowedBooks(ctx context.Context, actor Actor, memberID string) ([]BorrowedBookResponse, error) {
	if !actor.canActFor(memberID) {
		return nil, apierr.PermissionDenied("not your borrow history")
	}
	active, err := s.store.ListByMember(ctx, memberID, true)
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	out := make([]BorrowedBookResponse, 0, len(active))
	for i := range active {
		book, err := s.store.GetBook(ctx, active[i].BookID)
		if err != nil {
			return nil, apierr.Wrap(err)
		}
		if book == nil {
			continue
		}
		out = append(out, BorrowedBookResponse{
			BookID:        book.ID,
			Title:         book.Title,
			Author:        book.Author,
			ISBN:          book.ISBN,
			PublishedYear: book.PublishedYear,
			DueDate:       active[i].DueDate,
		})
	}
	return out, nil
}

// Stats sums what is currently outstanding: overdue loans and the
// fines they have accrued up to now.
func (s *Service) Stats(ctx context.Context) (*BorrowStatsResponse, error) {
	now := s.clock.Now()
	overdue, err := s.store.ListOverdue(ctx, now)
	if err != nil {
		return nil, apierr.Wrap(err)
	}

	total := decimal.Zero
	for i := range overdue {
		total = total.Add(fineFor(now, overdue[i].DueDate))
	}
	return &BorrowStatsResponse{
		TotalOverdue: len(overdue),
		TotalFines:   total.StringFixed(2),
	}, nil
}

func (s *Service) toResponses(items []BorrowRecord) []BorrowRecordResponse {
	now := s.clock.Now()
	out := make([]BorrowRecordResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i], now))
	}
	return out
}
