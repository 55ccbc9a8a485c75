package members

import "time"

// Member is a borrower identity. Inactive members may not borrow.
type Member struct {
	MemberID       string
	Name           string
	Email          string
	Phone          string
	MembershipDate time.Time
	IsActive       bool
	CreatedAt      time.Time
}
