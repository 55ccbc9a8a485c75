package books

import "time"

type CreateBookRequest struct {
	Title         string `json:"title" binding:"required"`
	Author        string `json:"author" binding:"required"`
	ISBN          string `json:"isbn" binding:"required"`
	PublishedYear int    `json:"published_year" binding:"required"`
	TotalCopies   int    `json:"total_copies" binding:"required"`
	LibraryID     *int64 `json:"library_id,omitempty"`
}

type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty"`
	Author        *string `json:"author,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	TotalCopies   *int    `json:"total_copies,omitempty"`
	LibraryID     *int64  `json:"library_id,omitempty"`
}

type BookResponse struct {
	BookID          int64     `json:"book_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublishedYear   int       `json:"published_year"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Available       bool      `json:"available"`
	LibraryID       *int64    `json:"library_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toResponse(b *Book) BookResponse {
	resp := BookResponse{
		BookID:          b.BookID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublishedYear:   b.PublishedYear,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Available:       b.AvailableCopies > 0,
		CreatedAt:       b.CreatedAt,
	}
	if b.LibraryID.Valid {
		v := b.LibraryID.Int64
		resp.LibraryID = &v
	}
	return resp
}
