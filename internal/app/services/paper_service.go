package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/filestorage"
	"github.com/yigit/paperarchive/internal/pkg/helpers"
	"github.com/yigit/paperarchive/internal/pkg/logger"
	"github.com/yigit/paperarchive/internal/pkg/metrics"
	"github.com/yigit/paperarchive/internal/pkg/validation"
)

const (
	minPaperYear = 1900
	maxPaperYear = 2100

	fileCleanupTimeout = 30 * time.Second
)

// PaperService defines the interface for question paper operations
type PaperService interface {
	ListPapers(ctx context.Context, filter models.PaperFilter, page helpers.PageRequest) (*dto.PaperListResponse, error)
	GetPaper(ctx context.Context, id uuid.UUID) (*dto.PaperDetailResponse, error)
	ListPapersByUploader(ctx context.Context, uploaderID uuid.UUID) ([]dto.PaperDetailResponse, error)
	UploadPaper(ctx context.Context, actor Actor, req *dto.UploadPaperRequest, file *multipart.FileHeader) (*dto.PaperDetailResponse, error)
	DeletePaper(ctx context.Context, actor Actor, id uuid.UUID) error
}

// PaperServiceConfig holds the tunables of PaperService
type PaperServiceConfig struct {
	// Folder receives uploaded paper files
	Folder string
	// MaxUploadBytes bounds a single upload; zero disables the check
	MaxUploadBytes int64
}

// paperServiceImpl implements PaperService
type paperServiceImpl struct {
	papers    PaperStore
	users     UserStore
	files     filestorage.FileStore
	assembler *ResultAssembler
	metrics   *metrics.Metrics
	cfg       PaperServiceConfig
}

// NewPaperService creates a new PaperService
func NewPaperService(
	papers PaperStore,
	users UserStore,
	files filestorage.FileStore,
	m *metrics.Metrics,
	cfg PaperServiceConfig,
) PaperService {
	return &paperServiceImpl{
		papers:    papers,
		users:     users,
		files:     files,
		assembler: NewResultAssembler(users),
		metrics:   m,
		cfg:       cfg,
	}
}

// ListPapers returns one page of papers matching filter, newest first.
// A page past the end yields an empty list with the real totals.
func (s *paperServiceImpl) ListPapers(ctx context.Context, filter models.PaperFilter, page helpers.PageRequest) (*dto.PaperListResponse, error) {
	if page.Page < 1 {
		return nil, apperrors.NewValidationError("page", "page must be a positive integer")
	}
	if page.Limit < 1 {
		return nil, apperrors.NewValidationError("limit", "limit must be a positive integer")
	}

	total, err := s.papers.CountPapers(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListing(isFiltered(filter), total)

	resp := &dto.PaperListResponse{
		Papers:      []dto.PaperSummary{},
		TotalPages:  helpers.TotalPages(total, page.Limit),
		CurrentPage: page.Page,
		TotalItems:  total,
	}

	if total == 0 || page.Page > resp.TotalPages {
		return resp, nil
	}

	papers, err := s.papers.ListPapers(ctx, filter, page.Offset(), uint64(page.Limit))
	if err != nil {
		return nil, err
	}

	summaries, err := s.assembler.Summaries(ctx, papers)
	if err != nil {
		return nil, err
	}
	resp.Papers = summaries
	return resp, nil
}

// GetPaper returns a single paper with its uploader detail
func (s *paperServiceImpl) GetPaper(ctx context.Context, id uuid.UUID) (*dto.PaperDetailResponse, error) {
	paper, err := s.papers.GetPaperByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assembler.Detail(ctx, paper)
}

// ListPapersByUploader returns every paper of one uploader, newest first
func (s *paperServiceImpl) ListPapersByUploader(ctx context.Context, uploaderID uuid.UUID) ([]dto.PaperDetailResponse, error) {
	papers, err := s.papers.ListPapersByUploader(ctx, uploaderID)
	if err != nil {
		return nil, err
	}
	return s.assembler.Details(ctx, papers)
}

// UploadPaper validates the metadata and file, stores the file and records the paper.
// university falls back to the uploader's own university.
func (s *paperServiceImpl) UploadPaper(ctx context.Context, actor Actor, req *dto.UploadPaperRequest, file *multipart.FileHeader) (*dto.PaperDetailResponse, error) {
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := requireNonBlank(map[string]string{
		"title": req.Title, "subject": req.Subject, "course": req.Course, "semester": req.Semester,
	}); err != nil {
		return nil, err
	}
	year, err := parsePaperYear(req.Year)
	if err != nil {
		return nil, err
	}

	data, mtype, err := readUpload(file, s.cfg.MaxUploadBytes, paperMimeTypes)
	if err != nil {
		return nil, err
	}

	uploader, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	stored, err := s.files.Upload(ctx, bytes.NewReader(data), filestorage.Upload{
		Folder:    s.cfg.Folder,
		MimeType:  mtype.String(),
		Extension: mtype.Extension(),
		Size:      int64(len(data)),
	})
	if err != nil {
		logger.Error().Err(err).Str("userID", actor.UserID.String()).Msg("Error storing uploaded paper file")
		return nil, apperrors.NewStoreError("store paper file", err)
	}

	university := helpers.NullableString(req.University)
	if university == nil {
		university = uploader.University
	}

	paper := &models.QuestionPaper{
		Title:       strings.TrimSpace(req.Title),
		Description: helpers.NullableString(req.Description),
		Subject:     strings.TrimSpace(req.Subject),
		Course:      strings.TrimSpace(req.Course),
		Year:        year,
		Semester:    strings.TrimSpace(req.Semester),
		FileURL:     stored.URL,
		FileType:    mtype.String(),
		UploadedBy:  uploader.ID,
		University:  university,
	}
	if err := s.papers.CreatePaper(ctx, paper); err != nil {
		s.removeFile(ctx, stored.URL)
		return nil, err
	}

	s.metrics.RecordUpload()
	logger.Info().Str("paperID", paper.ID.String()).Str("userID", uploader.ID.String()).Msg("Question paper uploaded")

	resp := dto.NewPaperDetailResponse(paper, newUploaderDetail(uploader))
	return &resp, nil
}

// DeletePaper removes a paper. Only its uploader or an admin may do so. The
// stored file is removed afterwards on a best-effort basis.
func (s *paperServiceImpl) DeletePaper(ctx context.Context, actor Actor, id uuid.UUID) error {
	paper, err := s.papers.GetPaperByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(paper.UploadedBy) {
		return apperrors.NewForbiddenError("You are not allowed to delete this paper")
	}

	if err := s.papers.DeletePaper(ctx, id); err != nil {
		return err
	}

	cleanupFailed := !s.removeFile(ctx, paper.FileURL)
	s.metrics.RecordDelete(cleanupFailed)
	logger.Info().Str("paperID", id.String()).Str("userID", actor.UserID.String()).Msg("Question paper deleted")
	return nil
}

// removeFile deletes a stored file, logging instead of failing. It outlives
// the request context so an abandoned client does not leave files behind.
func (s *paperServiceImpl) removeFile(ctx context.Context, fileURL string) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fileCleanupTimeout)
	defer cancel()

	if err := s.files.Delete(ctx, fileURL); err != nil {
		logger.Warn().Err(err).Str("fileURL", fileURL).Msg("Failed to remove stored file")
		return false
	}
	return true
}

func parsePaperYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewValidationError("year", "year must be a number")
	}
	if year < minPaperYear || year > maxPaperYear {
		return 0, apperrors.NewValidationError("year", "year must be between 1900 and 2100")
	}
	return year, nil
}

// requireNonBlank rejects whitespace-only values, reporting fields in name order
func requireNonBlank(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.TrimSpace(fields[name]) == "" {
			return apperrors.NewValidationError(name, name+" is a required field")
		}
	}
	return nil
}

func isFiltered(f models.PaperFilter) bool {
	return f.Search != nil || f.Subject != nil || f.Year != nil || f.Semester != nil
}
