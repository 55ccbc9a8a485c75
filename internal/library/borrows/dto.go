package borrows

import "time"

type BorrowRequest struct {
	MemberID     string `json:"member_id" binding:"required"`
	BookID       int64  `json:"book_id" binding:"required"`
	DurationDays *int   `json:"duration_days,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	MemberID string `json:"member_id" binding:"required"`
	BookID   int64  `json:"book_id" binding:"required"`
	Notes    string `json:"notes,omitempty"`
}

type RenewRequest struct {
	AdditionalDays int `json:"additional_days" binding:"required"`
}

type BorrowRecordResponse struct {
	RecordID     int64      `json:"record_id"`
	RecordULID   string     `json:"record_ulid"`
	BookID       int64      `json:"book_id"`
	MemberID     string     `json:"member_id"`
	BookTitle    string     `json:"book_title"`
	MemberName   string     `json:"member_name"`
	BorrowDate   time.Time  `json:"borrow_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Returned     bool       `json:"returned"`
	IsOverdue    bool       `json:"is_overdue"`
	FineAmount   *string    `json:"fine_amount,omitempty"`
	RenewalCount int        `json:"renewal_count"`
	Notes        *string    `json:"notes,omitempty"`
}

type FineResponse struct {
	RecordID   int64  `json:"record_id"`
	FineAmount string `json:"fine_amount"`
}

type CanBorrowResponse struct {
	MemberID  string `json:"member_id"`
	CanBorrow bool   `json:"can_borrow"`
}

type BorrowedBookResponse struct {
	BookID        int64     `json:"book_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	PublishedYear int       `json:"published_year"`
	DueDate       time.Time `json:"due_date"`
}

type BorrowStatsResponse struct {
	TotalOverdue int    `json:"total_overdue"`
	TotalFines   string `json:"total_fines"`
}

// toResponse maps a ledger row to its API view. is_overdue is derived
// at read time and never stored.
func toResponse(rec *BorrowRecord, now time.Time) BorrowRecordResponse {
	resp := BorrowRecordResponse{
		RecordID:     rec.RecordID,
		RecordULID:   rec.RecordULID,
		BookID:       rec.BookID,
		MemberID:     rec.MemberID,
		BookTitle:    rec.BookTitle,
		MemberName:   rec.MemberName,
		BorrowDate:   rec.BorrowDate,
		DueDate:      rec.DueDate,
		Returned:     rec.Returned,
		IsOverdue:    !rec.Returned && rec.DueDate.Before(now),
		RenewalCount: rec.RenewalCount,
	}
	if rec.ReturnDate.Valid {
		v := rec.ReturnDate.Time
		resp.ReturnDate = &v
	}
	if rec.FineAmount.Valid {
		v := rec.FineAmount.Decimal.StringFixed(2)
		resp.FineAmount = &v
	}
	if rec.Notes.Valid {
		v := rec.Notes.String
		resp.Notes = &v
	}
	return resp
}
