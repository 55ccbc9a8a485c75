package members

import "time"

type CreateMemberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone,omitempty"`
}

type UpdateMemberRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type MemberResponse struct {
	MemberID       string    `json:"member_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	MembershipDate time.Time `json:"membership_date"`
	IsActive       bool      `json:"is_active"`
}

func toResponse(m *Member) MemberResponse {
	return MemberResponse{
		MemberID:       m.MemberID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		MembershipDate: m.MembershipDate,
		IsActive:       m.IsActive,
	}
}
