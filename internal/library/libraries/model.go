package libraries

import (
	"database/sql"
	"time"
)

type Library struct {
	LibraryID   int64
	Name        string
	Location    string
	Description sql.NullString
	CreatedAt   time.Time
}
