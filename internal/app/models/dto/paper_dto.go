package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
)

// PaperListQuery carries the raw, loosely-typed listing parameters exactly as
// they arrive on the query string. Parsing happens in the controller.
type PaperListQuery struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	Search   string `form:"search"`
	Subject  string `form:"subject"`
	Year     string `form:"year"`
	Semester string `form:"semester"`
}

// UploaderSummary is the compact uploader projection used in list views
type UploaderSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar,omitempty"`
}

// UploaderDetail is the uploader projection used in single-paper views
type UploaderDetail struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	University string    `json:"university,omitempty"`
}

// PaperSummary is one row of the paper listing
type PaperSummary struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Subject     string          `json:"subject"`
	Course      string          `json:"course"`
	Year        int             `json:"year"`
	Semester    string          `json:"semester"`
	FileURL     string          `json:"fileUrl"`
	FileType    string          `json:"fileType"`
	University  string          `json:"university,omitempty"`
	UploadedBy  UploaderSummary `json:"uploadedBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PaperDetailResponse is a full paper record with expanded uploader detail
type PaperDetailResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Subject     string         `json:"subject"`
	Course      string         `json:"course"`
	Year        int            `json:"year"`
	Semester    string         `json:"semester"`
	FileURL     string         `json:"fileUrl"`
	FileType    string         `json:"fileType"`
	University  string         `json:"university,omitempty"`
	UploadedBy  UploaderDetail `json:"uploadedBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// PaperListResponse is the listing contract consumed by the UI
type PaperListResponse struct {
	Papers      []PaperSummary `json:"papers"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	TotalItems  int64          `json:"totalItems"`
}

// UploadPaperRequest represents the multipart form fields of a paper upload
type UploadPaperRequest struct {
	Title       string `form:"title" json:"title" binding:"required,max=255"`
	Description string `form:"description" json:"description" binding:"max=2000"`
	Subject     string `form:"subject" json:"subject" binding:"required,max=120"`
	Course      string `form:"course" json:"course" binding:"required,max=120"`
	Year        string `form:"year" json:"year" binding:"required,numeric"`
	Semester    string `form:"semester" json:"semester" binding:"required,max=40"`
	University  string `form:"university" json:"university" binding:"max=160"`
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewPaperSummary converts a paper plus its resolved uploader into a list row
func NewPaperSummary(p *models.QuestionPaper, uploader UploaderSummary) PaperSummary {
	return PaperSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: derefString(p.Description),
		Subject:     p.Subject,
		Course:      p.Course,
		Year:        p.Year,
		Semester:    p.Semester,
		FileURL:     p.FileURL,
		FileType:    p.FileType,
		University:  derefString(p.University),
		UploadedBy:  uploader,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewPaperDetailResponse converts a paper plus its resolved uploader into a detail view
func NewPaperDetailResponse(p *models.QuestionPaper, uploader UploaderDetail) PaperDetailResponse {
	return PaperDetailResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: derefString(p.Description),
		Subject:     p.Subject,
		Course:      p.Course,
		Year:        p.Year,
		Semester:    p.Semester,
		FileURL:     p.FileURL,
		FileType:    p.FileType,
		University:  derefString(p.University),
		UploadedBy:  uploader,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
