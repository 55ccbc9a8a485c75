package borrows

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libris-backend/internal/platform/apierr"
	"libris-backend/internal/platform/auth"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type seqIDGen struct{ n int }

func (g *seqIDGen) New() (string, error) {
	g.n++
	return fmt.Sprintf("01TESTULID%016d", g.n), nil
}

// fakeStore is an in-memory Store with the same rules the SQL store
// enforces inside its transactions.
type fakeStore struct {
	borrowers map[string]*Borrower
	books     map[int64]*BookInfo
	records   map[int64]*BorrowRecord
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		borrowers: map[string]*Borrower{},
		books:     map[int64]*BookInfo{},
		records:   map[int64]*BorrowRecord{},
	}
}

func (f *fakeStore) FindBorrower(_ context.Context, memberID string) (*Borrower, error) {
	b, ok := f.borrowers[memberID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) GetBook(_ context.Context, bookID int64) (*BookInfo, error) {
	b, ok := f.books[bookID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ExecBorrow(_ context.Context, rec *BorrowRecord) error {
	book, ok := f.books[rec.BookID]
	if !ok {
		return apierr.NotFound("book not found")
	}
	if book.Available <= 0 {
		return apierr.InvalidState(fmt.Sprintf("no copies available for '%s'", book.Title))
	}
	for _, r := range f.records {
		if r.BookID == rec.BookID && r.MemberID == rec.MemberID && !r.Returned {
			return apierr.Conflict(fmt.Sprintf("member already has an active borrow of '%s'", book.Title))
		}
	}
	f.nextID++
	rec.RecordID = f.nextID
	rec.BookTitle = book.Title
	cp := *rec
	f.records[rec.RecordID] = &cp
	book.Available--
	return nil
}

func (f *fakeStore) ExecReturn(_ context.Context, bookID int64, memberID string, returnedAt time.Time, notes string) (*BorrowRecord, error) {
	for _, r := range f.records {
		if r.BookID == bookID && r.MemberID == memberID && !r.Returned {
			r.ReturnDate = sql.NullTime{Time: returnedAt, Valid: true}
			r.Returned = true
			if fine := fineFor(returnedAt, r.DueDate); fine.IsPositive() {
				r.FineAmount.Decimal = fine
				r.FineAmount.Valid = true
			}
			if notes != "" {
				r.Notes = appendNote(r.Notes, "Return notes: "+notes)
			}
			if book, ok := f.books[bookID]; ok && book.Available < book.Total {
				book.Available++
			}
			cp := *r
			return &cp, nil
		}
	}
	return nil, apierr.NotFound("no active borrow for this book and member")
}

func (f *fakeStore) ExecRenew(_ context.Context, recordID int64, additionalDays int, now time.Time) (*BorrowRecord, error) {
	r, ok := f.records[recordID]
	if !ok {
		return nil, apierr.NotFound("borrow record not found")
	}
	if r.Returned {
		return nil, apierr.InvalidState("cannot renew a returned borrow")
	}
	if now.After(r.DueDate) {
		return nil, apierr.InvalidState("cannot renew an overdue borrow")
	}
	if book, ok := f.books[r.BookID]; ok && book.Available <= 0 {
		return nil, apierr.InvalidState("cannot renew while all other copies are borrowed")
	}
	if r.RenewalCount >= maxRenewalCount {
		return nil, apierr.InvalidState("renewal limit reached")
	}
	newDue := r.DueDate.AddDate(0, 0, additionalDays)
	r.DueDate = newDue
	r.RenewalCount++
	r.Notes = appendNote(r.Notes, fmt.Sprintf(
		"Renewed on %s, new due date: %s",
		now.Format("2006-01-02"), newDue.Format("2006-01-02"),
	))
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetByID(_ context.Context, recordID int64) (*BorrowRecord, error) {
	r, ok := f.records[recordID]
	if !ok {
		return nil, apierr.NotFound("borrow record not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListByMember(_ context.Context, memberID string, activeOnly bool) ([]BorrowRecord, error) {
	var out []BorrowRecord
	for _, r := range f.records {
		if r.MemberID != memberID {
			continue
		}
		if activeOnly && r.Returned {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) ListByBook(_ context.Context, bookID int64, activeOnly bool) ([]BorrowRecord, error) {
	var out []BorrowRecord
	for _, r := range f.records {
		if r.BookID != bookID {
			continue
		}
		if activeOnly && r.Returned {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) ListOverdue(_ context.Context, now time.Time) ([]BorrowRecord, error) {
	var out []BorrowRecord
	for _, r := range f.records {
		if !r.Returned && r.DueDate.Before(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

var testStart = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) (*Service, *fixedClock) {
	clock := &fixedClock{t: testStart}
	svc := &Service{
		store: store,
		clock: clock,
		id:    &seqIDGen{},
		log:   zap.NewNop(),
	}
	return svc, clock
}

func seedStore() *fakeStore {
	f := newFakeStore()
	f.borrowers["MEM1"] = &Borrower{ID: "MEM1", Name: "Ada Lovelace", Active: true}
	f.borrowers["MEM2"] = &Borrower{ID: "MEM2", Name: "Alan Turing", Active: true}
	f.borrowers["MEM3"] = &Borrower{ID: "MEM3", Name: "Closed Account", Active: false}
	f.books[1] = &BookInfo{ID: 1, Title: "The Go Programming Language", Author: "Donovan", ISBN: "9780134190440", PublishedYear: 2015, Available: 2, Total: 2}
	f.books[2] = &BookInfo{ID: 2, Title: "SICP", Author: "Abelson", ISBN: "9780262510875", PublishedYear: 1996, Available: 1, Total: 1}
	for i := int64(3); i <= 8; i++ {
		f.books[i] = &BookInfo{ID: i, Title: fmt.Sprintf("Volume %d", i), Author: "Various", ISBN: fmt.Sprintf("978000000000%d", i), PublishedYear: 2000, Available: 1, Total: 1}
	}
	return f
}

func staffActor() Actor { return Actor{Role: auth.RoleLibrarian} }

func memberActor(id string) Actor { return Actor{MemberID: id, Role: auth.RoleMember} }

func assertCode(t *testing.T, err error, code apierr.Code) {
	t.Helper()
	var api *apierr.Error
	require.ErrorAs(t, err, &api)
	assert.Equal(t, code, api.Code)
}

func TestBorrowHappyPath(t *testing.T) {
	store := seedStore()
	svc, _ := newTestService(store)

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	assert.Equal(t, testStart, res.BorrowDate)
	assert.Equal(t, testStart.AddDate(0, 0, 14), res.DueDate)
	assert.False(t, res.Returned)
	assert.False(t, res.IsOverdue)
	assert.Nil(t, res.FineAmount)
	assert.Equal(t, 0, res.RenewalCount)
	assert.Equal(t, 1, store.books[1].Available)
}

func TestBorrowCustomDuration(t *testing.T) {
	svc, _ := newTestService(seedStore())

	days := 7
	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1, DurationDays: &days})
	require.NoError(t, err)
	assert.Equal(t, testStart.AddDate(0, 0, 7), res.DueDate)

	bad := 0
	_, err = svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 2, DurationDays: &bad})
	assertCode(t, err, apierr.CodeInvalidArgument)
}

func TestBorrowNoCopiesAvailable(t *testing.T) {
	store := seedStore()
	svc, _ := newTestService(store)

	_, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 2})
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM2", BookID: 2})
	assertCode(t, err, apierr.CodeInvalidState)
	assert.Contains(t, err.Error(), "no copies available for 'SICP'")
	assert.Equal(t, 0, store.books[2].Available)
}

func TestBorrowDuplicateActive(t *testing.T) {
	svc, _ := newTestService(seedStore())

	_, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	_, err = svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	assertCode(t, err, apierr.CodeConflict)
}

func TestBorrowRejectsUnknownOrInactiveMember(t *testing.T) {
	svc, _ := newTestService(seedStore())

	_, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "NOPE", BookID: 1})
	assertCode(t, err, apierr.CodeNotFound)

	_, err = svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM3", BookID: 1})
	assertCode(t, err, apierr.CodeInvalidArgument)

	_, err = svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 999})
	assertCode(t, err, apierr.CodeNotFound)
}

func TestReturnOnTime(t *testing.T) {
	store := seedStore()
	svc, clock := newTestService(store)

	_, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	clock.Advance(5 * 24 * time.Hour)

	res, err := svc.Return(context.Background(), ReturnRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	assert.True(t, res.Returned)
	assert.Nil(t, res.FineAmount)
	assert.Equal(t, 2, store.books[1].Available)
}

func TestReturnLateStampsFine(t *testing.T) {
	svc, clock := newTestService(seedStore())

	_, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	// due after 14 days; return 6 days past due
	clock.Advance(20 * 24 * time.Hour)
	res, err := svc.Return(context.Background(), ReturnRequest{MemberID: "MEM1", BookID: 1, Notes: "water damage"})
	require.NoError(t, err)

	require.NotNil(t, res.FineAmount)
	assert.Equal(t, "3.00", *res.FineAmount)
	require.NotNil(t, res.Notes)
	assert.Contains(t, *res.Notes, "Return notes: water damage")
}

func TestReturnWithoutActiveBorrow(t *testing.T) {
	svc, _ := newTestService(seedStore())

	_, err := svc.Return(context.Background(), ReturnRequest{MemberID: "MEM1", BookID: 1})
	assertCode(t, err, apierr.CodeNotFound)
}

func TestCalculateFineLiveAndFrozen(t *testing.T) {
	svc, clock := newTestService(seedStore())

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	id := res.RecordID

	fine, err := svc.CalculateFine(context.Background(), staffActor(), id)
	require.NoError(t, err)
	assert.Equal(t, "0.00", fine.FineAmount)

	// 4 days overdue while still out
	clock.Advance(18 * 24 * time.Hour)
	fine, err = svc.CalculateFine(context.Background(), staffActor(), id)
	require.NoError(t, err)
	assert.Equal(t, "2.00", fine.FineAmount)

	_, err = svc.Return(context.Background(), ReturnRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	// frozen at return time, the clock no longer matters
	clock.Advance(30 * 24 * time.Hour)
	fine, err = svc.CalculateFine(context.Background(), staffActor(), id)
	require.NoError(t, err)
	assert.Equal(t, "2.00", fine.FineAmount)
}

func TestCalculateFineOwnership(t *testing.T) {
	svc, _ := newTestService(seedStore())

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	_, err = svc.CalculateFine(context.Background(), memberActor("MEM2"), res.RecordID)
	assertCode(t, err, apierr.CodePermissionDenied)

	_, err = svc.CalculateFine(context.Background(), memberActor("MEM1"), res.RecordID)
	assert.NoError(t, err)
}

func TestRenewExtendsDueDate(t *testing.T) {
	svc, clock := newTestService(seedStore())

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	originalDue := res.DueDate

	clock.Advance(3 * 24 * time.Hour)
	renewed, err := svc.Renew(context.Background(), memberActor("MEM1"), res.RecordID, RenewRequest{AdditionalDays: 7})
	require.NoError(t, err)

	assert.Equal(t, originalDue.AddDate(0, 0, 7), renewed.DueDate)
	assert.Equal(t, 1, renewed.RenewalCount)
	require.NotNil(t, renewed.Notes)
	assert.Contains(t, *renewed.Notes, "Renewed on 2025-03-04, new due date: 2025-03-22")
}

func TestRenewValidation(t *testing.T) {
	svc, _ := newTestService(seedStore())

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 0})
	assertCode(t, err, apierr.CodeInvalidArgument)

	_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 31})
	assertCode(t, err, apierr.CodeInvalidArgument)

	_, err = svc.Renew(context.Background(), memberActor("MEM2"), res.RecordID, RenewRequest{AdditionalDays: 7})
	assertCode(t, err, apierr.CodePermissionDenied)
}

func TestRenewRejectsOverdueAndReturned(t *testing.T) {
	svc, clock := newTestService(seedStore())

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	clock.Advance(15 * 24 * time.Hour)
	_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 7})
	assertCode(t, err, apierr.CodeInvalidState)

	_, err = svc.Return(context.Background(), ReturnRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 7})
	assertCode(t, err, apierr.CodeInvalidState)
}

func TestRenewRejectsWhenAllCopiesOut(t *testing.T) {
	svc, _ := newTestService(seedStore())

	// SICP has a single copy; renewing it would starve waiting readers.
	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 2})
	require.NoError(t, err)

	_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 7})
	assertCode(t, err, apierr.CodeInvalidState)
}

func TestRenewLimitReached(t *testing.T) {
	svc, _ := newTestService(seedStore())

	res, err := svc.Borrow(context.Background(), BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)

	for i := 0; i < maxRenewalCount; i++ {
		_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 1})
		require.NoError(t, err)
	}
	_, err = svc.Renew(context.Background(), staffActor(), res.RecordID, RenewRequest{AdditionalDays: 1})
	assertCode(t, err, apierr.CodeInvalidState)
}

func TestCanBorrow(t *testing.T) {
	store := seedStore()
	svc, clock := newTestService(store)
	ctx := context.Background()

	res, err := svc.CanBorrow(ctx, "MEM1")
	require.NoError(t, err)
	assert.True(t, res.CanBorrow)

	_, err = svc.CanBorrow(ctx, "NOPE")
	assertCode(t, err, apierr.CodeNotFound)

	res, err = svc.CanBorrow(ctx, "MEM3")
	require.NoError(t, err)
	assert.False(t, res.CanBorrow)

	// five books out hits the limit
	for _, bookID := range []int64{1, 2, 3, 4, 5} {
		_, err = svc.Borrow(ctx, BorrowRequest{MemberID: "MEM1", BookID: bookID})
		require.NoError(t, err)
	}
	res, err = svc.CanBorrow(ctx, "MEM1")
	require.NoError(t, err)
	assert.False(t, res.CanBorrow)

	// back under the limit but one loan overdue
	_, err = svc.Return(ctx, ReturnRequest{MemberID: "MEM1", BookID: 4})
	require.NoError(t, err)
	_, err = svc.Return(ctx, ReturnRequest{MemberID: "MEM1", BookID: 5})
	require.NoError(t, err)
	clock.Advance(15 * 24 * time.Hour)
	res, err = svc.CanBorrow(ctx, "MEM1")
	require.NoError(t, err)
	assert.False(t, res.CanBorrow)
}

func TestHistoryAndOwnership(t *testing.T) {
	svc, _ := newTestService(seedStore())
	ctx := context.Background()

	_, err := svc.Borrow(ctx, BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, BorrowRequest{MemberID: "MEM1", BookID: 2})
	require.NoError(t, err)
	_, err = svc.Return(ctx, ReturnRequest{MemberID: "MEM1", BookID: 2})
	require.NoError(t, err)

	all, err := svc.History(ctx, memberActor("MEM1"), "MEM1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.History(ctx, staffActor(), "MEM1", true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.History(ctx, memberActor("MEM2"), "MEM1", false)
	assertCode(t, err, apierr.CodePermissionDenied)
}

func TestBorrowedBooks(t *testing.T) {
	svc, _ := newTestService(seedStore())
	ctx := context.Background()

	_, err := svc.Borrow(ctx, BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, BorrowRequest{MemberID: "MEM1", BookID: 2})
	require.NoError(t, err)

	books, err := svc.BorrowedBooks(ctx, memberActor("MEM1"), "MEM1")
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Equal(t, testStart.AddDate(0, 0, 14), b.DueDate)
		assert.NotEmpty(t, b.Title)
	}
}

func TestOverdueAndStats(t *testing.T) {
	svc, clock := newTestService(seedStore())
	ctx := context.Background()

	_, err := svc.Borrow(ctx, BorrowRequest{MemberID: "MEM1", BookID: 1})
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, BorrowRequest{MemberID: "MEM2", BookID: 2})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalOverdue)
	assert.Equal(t, "0.00", stats.TotalFines)

	// both loans 2 days past due
	clock.Advance(16 * 24 * time.Hour)

	overdue, err := svc.Overdue(ctx)
	require.NoError(t, err)
	assert.Len(t, overdue, 2)
	for _, r := range overdue {
		assert.True(t, r.IsOverdue)
	}

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOverdue)
	assert.Equal(t, "2.00", stats.TotalFines)
}
