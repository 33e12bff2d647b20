package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionPaper represents an archived exam paper record in the database.
// UploadedBy is a plain reference into users; it is resolved separately and
// may point at an account that no longer exists.
type QuestionPaper struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Subject     string    `json:"subject" db:"subject"`
	Course      string    `json:"course" db:"course"`
	Year        int       `json:"year" db:"year"`
	Semester    string    `json:"semester" db:"semester"`
	FileURL     string    `json:"fileUrl" db:"file_url"`
	FileType    string    `json:"fileType" db:"file_type"`
	UploadedBy  uuid.UUID `json:"uploadedBy" db:"uploaded_by"`
	University  *string   `json:"university,omitempty" db:"university"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// PaperFilter is the parsed form of the listing filters. A nil field places
// no constraint on the corresponding column.
type PaperFilter struct {
	Search   *string
	Subject  *string
	Year     *int
	Semester *string
}
