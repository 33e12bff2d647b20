package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/db"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/logger"
)

// paperColumns is the projection shared by every paper read, in scan order.
var paperColumns = []string{
	"p.id", "p.title", "p.description", "p.subject", "p.course", "p.year",
	"p.semester", "p.file_url", "p.file_type", "p.uploaded_by", "p.university",
	"p.created_at", "p.updated_at",
}

// newestFirst is the listing order. id breaks created_at ties so pages are stable.
var newestFirst = []string{"p.created_at DESC", "p.id DESC"}

// PaperRepository handles question paper database operations
type PaperRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewPaperRepository creates a new PaperRepository
func NewPaperRepository(conn db.DBTX) *PaperRepository {
	return &PaperRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CountPapers returns how many papers satisfy the filter
func (r *PaperRepository) CountPapers(ctx context.Context, filter models.PaperFilter) (int64, error) {
	query := r.sb.Select("COUNT(*)").From("question_papers p")
	if where := BuildPaperFilter(filter); len(where) > 0 {
		query = query.Where(where)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count papers query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count papers query")
		return 0, apperrors.NewStoreError("count papers", err)
	}
	return total, nil
}

// ListPapers returns at most limit papers satisfying the filter, newest first,
// skipping the first offset matches.
func (r *PaperRepository) ListPapers(ctx context.Context, filter models.PaperFilter, offset, limit uint64) ([]models.QuestionPaper, error) {
	query := r.sb.Select(paperColumns...).
		From("question_papers p").
		OrderBy(newestFirst...).
		Limit(limit).
		Offset(offset)
	if where := BuildPaperFilter(filter); len(where) > 0 {
		query = query.Where(where)
	}

	return r.queryPapers(ctx, "list papers", query)
}

// ListPapersByUploader returns every paper uploaded by the given user, newest first
func (r *PaperRepository) ListPapersByUploader(ctx context.Context, uploaderID uuid.UUID) ([]models.QuestionPaper, error) {
	query := r.sb.Select(paperColumns...).
		From("question_papers p").
		Where(squirrel.Eq{"p.uploaded_by": uploaderID}).
		OrderBy(newestFirst...)

	return r.queryPapers(ctx, "list papers by uploader", query)
}

// GetPaperByID retrieves a single paper by its identifier
func (r *PaperRepository) GetPaperByID(ctx context.Context, id uuid.UUID) (*models.QuestionPaper, error) {
	sql, args, err := r.sb.Select(paperColumns...).
		From("question_papers p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get paper query: %w", err)
	}

	paper, err := scanPaper(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaperNotFound
		}
		logger.Error().Err(err).Str("paperID", id.String()).Msg("Error fetching paper")
		return nil, apperrors.NewStoreError("get paper", err)
	}
	return paper, nil
}

// CreatePaper inserts a new paper. A nil ID is replaced with a fresh UUID and
// the stored timestamps are written back into paper.
func (r *PaperRepository) CreatePaper(ctx context.Context, paper *models.QuestionPaper) error {
	if paper.ID == uuid.Nil {
		paper.ID = uuid.New()
	}

	sql, args, err := r.sb.Insert("question_papers").
		Columns("id", "title", "description", "subject", "course", "year",
			"semester", "file_url", "file_type", "uploaded_by", "university").
		Values(paper.ID, paper.Title, paper.Description, paper.Subject, paper.Course, paper.Year,
			paper.Semester, paper.FileURL, paper.FileType, paper.UploadedBy, paper.University).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert paper query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&paper.CreatedAt, &paper.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error inserting paper")
		return apperrors.NewStoreError("create paper", err)
	}
	return nil
}

// DeletePaper removes a paper record. A missing record yields ErrPaperNotFound.
func (r *PaperRepository) DeletePaper(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("question_papers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete paper query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("paperID", id.String()).Msg("Error deleting paper")
		return apperrors.NewStoreError("delete paper", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPaperNotFound
	}
	return nil
}

func (r *PaperRepository) queryPapers(ctx context.Context, op string, query squirrel.SelectBuilder) ([]models.QuestionPaper, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing papers query")
		return nil, apperrors.NewStoreError(op, err)
	}
	defer rows.Close()

	papers := []models.QuestionPaper{}
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, apperrors.NewStoreError(op, err)
		}
		papers = append(papers, *paper)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError(op, err)
	}
	return papers, nil
}

func scanPaper(row pgx.Row) (*models.QuestionPaper, error) {
	var p models.QuestionPaper
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Subject, &p.Course, &p.Year,
		&p.Semester, &p.FileURL, &p.FileType, &p.UploadedBy, &p.University,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
