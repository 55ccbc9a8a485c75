package libraries

import "time"

type CreateLibraryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Location    string  `json:"location" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type UpdateLibraryRequest struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
}

type LibraryResponse struct {
	LibraryID   int64     `json:"library_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(l *Library) LibraryResponse {
	resp := LibraryResponse{
		LibraryID: l.LibraryID,
		Name:      l.Name,
		Location:  l.Location,
		CreatedAt: l.CreatedAt,
	}
	if l.Description.Valid {
		v := l.Description.String
		resp.Description = &v
	}
	return resp
}
