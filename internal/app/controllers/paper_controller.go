package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/app/services"
	"github.com/yigit/paperarchive/internal/middleware"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/helpers"
)

// multipartOverhead is the slack allowed on top of the file limit for the
// other form fields and boundaries.
const multipartOverhead = 1 << 20

// PaperControllerConfig holds the request limits of PaperController
type PaperControllerConfig struct {
	DefaultLimit   int
	MaxLimit       int
	MaxUploadBytes int64
}

// PaperController handles question paper endpoints
type PaperController struct {
	paperService services.PaperService
	cfg          PaperControllerConfig
}

// NewPaperController creates a new PaperController
func NewPaperController(paperService services.PaperService, cfg PaperControllerConfig) *PaperController {
	return &PaperController{
		paperService: paperService,
		cfg:          cfg,
	}
}

// ListPapers handles the paginated, filtered paper listing
// @Summary List question papers
// @Tags papers
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Substring of title, course, description or subject"
// @Param subject query string false "Exact subject, case-insensitive"
// @Param year query int false "Exam year"
// @Param semester query string false "Exact semester, case-insensitive"
// @Success 200 {object} dto.PaperListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Server error"
// @Router /papers [get]
func (c *PaperController) ListPapers(ctx *gin.Context) {
	var query dto.PaperListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	page, err := helpers.ParsePageRequest(query.Page, query.Limit, c.cfg.DefaultLimit, c.cfg.MaxLimit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filter, err := parsePaperFilter(query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.paperService.ListPapers(ctx.Request.Context(), filter, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetPaper returns a single paper
// @Summary Get question paper by ID
// @Tags papers
// @Produce json
// @Param id path string true "Paper ID"
// @Success 200 {object} dto.PaperDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid paper ID"
// @Failure 404 {object} dto.ErrorResponse "Question paper not found"
// @Router /papers/{id} [get]
func (c *PaperController) GetPaper(ctx *gin.Context) {
	id, err := parseUUIDParam(ctx, "id", "Invalid paper ID")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	paper, err := c.paperService.GetPaper(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, paper)
}

// ListPapersByUploader returns all papers of one uploader
// @Summary List papers uploaded by a user
// @Tags papers
// @Produce json
// @Param uploaderId path string true "Uploader user ID"
// @Success 200 {array} dto.PaperDetailResponse
// @Router /papers/user/{uploaderId} [get]
func (c *PaperController) ListPapersByUploader(ctx *gin.Context) {
	uploaderID, err := parseUUIDParam(ctx, "uploaderId", "Invalid user ID")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	papers, err := c.paperService.ListPapersByUploader(ctx.Request.Context(), uploaderID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, papers)
}

// UploadPaper stores a new paper from a multipart form
// @Summary Upload a question paper
// @Tags papers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param subject formData string true "Subject"
// @Param course formData string true "Course"
// @Param year formData int true "Exam year"
// @Param semester formData string true "Semester"
// @Param university formData string false "University (defaults to the uploader's)"
// @Param file formData file true "PDF or image"
// @Success 201 {object} dto.PaperDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid form or unsupported file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /papers [post]
func (c *PaperController) UploadPaper(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if c.cfg.MaxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.cfg.MaxUploadBytes+multipartOverhead)
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// reported by the service as a missing file
		case errors.As(err, &tooLarge):
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("file", "Uploaded file is too large"))
			return
		default:
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("file", "Invalid multipart form"))
			return
		}
	}

	req := dto.UploadPaperRequest{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Subject:     ctx.PostForm("subject"),
		Course:      ctx.PostForm("course"),
		Year:        ctx.PostForm("year"),
		Semester:    ctx.PostForm("semester"),
		University:  ctx.PostForm("university"),
	}

	paper, err := c.paperService.UploadPaper(ctx.Request.Context(), actor, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, paper)
}

// DeletePaper removes a paper owned by the caller (or any paper, for admins)
// @Summary Delete a question paper
// @Tags papers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Not the uploader"
// @Failure 404 {object} dto.ErrorResponse "Question paper not found"
// @Router /papers/{id} [delete]
func (c *PaperController) DeletePaper(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	id, err := parseUUIDParam(ctx, "id", "Invalid paper ID")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.paperService.DeletePaper(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Question paper deleted"})
}

// parsePaperFilter turns raw query values into a PaperFilter. Blank values
// impose no constraint; a year that is not a number or does not fit the
// year column is rejected.
func parsePaperFilter(q dto.PaperListQuery) (models.PaperFilter, error) {
	filter := models.PaperFilter{
		Search:   nonBlank(q.Search),
		Subject:  nonBlank(q.Subject),
		Semester: nonBlank(q.Semester),
	}

	if raw := strings.TrimSpace(q.Year); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return models.PaperFilter{}, apperrors.NewValidationError("year", "year is out of range")
			}
			return models.PaperFilter{}, apperrors.NewValidationError("year", "year must be a number")
		}
		year := int(parsed)
		filter.Year = &year
	}

	return filter, nil
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseUUIDParam(ctx *gin.Context, name, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(name, message)
	}
	return id, nil
}
