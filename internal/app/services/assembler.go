package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/models/dto"
)

// UnknownUploaderName is shown for papers whose uploader account no longer exists
const UnknownUploaderName = "Unknown user"

// ResultAssembler attaches uploader identity to paper records. All uploaders
// of a batch are resolved with a single lookup.
type ResultAssembler struct {
	users UserLookup
}

// NewResultAssembler creates a new ResultAssembler
func NewResultAssembler(users UserLookup) *ResultAssembler {
	return &ResultAssembler{users: users}
}

// Summaries builds list rows, preserving the order of papers
func (a *ResultAssembler) Summaries(ctx context.Context, papers []models.QuestionPaper) ([]dto.PaperSummary, error) {
	out := make([]dto.PaperSummary, 0, len(papers))
	if len(papers) == 0 {
		return out, nil
	}

	uploaders, err := a.resolve(ctx, papers)
	if err != nil {
		return nil, err
	}

	for i := range papers {
		p := &papers[i]
		out = append(out, dto.NewPaperSummary(p, uploaderSummary(p.UploadedBy, uploaders)))
	}
	return out, nil
}

// Details builds detail views, preserving the order of papers
func (a *ResultAssembler) Details(ctx context.Context, papers []models.QuestionPaper) ([]dto.PaperDetailResponse, error) {
	out := make([]dto.PaperDetailResponse, 0, len(papers))
	if len(papers) == 0 {
		return out, nil
	}

	uploaders, err := a.resolve(ctx, papers)
	if err != nil {
		return nil, err
	}

	for i := range papers {
		p := &papers[i]
		out = append(out, dto.NewPaperDetailResponse(p, uploaderDetail(p.UploadedBy, uploaders)))
	}
	return out, nil
}

// Detail builds the detail view of a single paper
func (a *ResultAssembler) Detail(ctx context.Context, paper *models.QuestionPaper) (*dto.PaperDetailResponse, error) {
	details, err := a.Details(ctx, []models.QuestionPaper{*paper})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (a *ResultAssembler) resolve(ctx context.Context, papers []models.QuestionPaper) (map[uuid.UUID]models.User, error) {
	seen := make(map[uuid.UUID]struct{}, len(papers))
	ids := make([]uuid.UUID, 0, len(papers))
	for _, p := range papers {
		if _, ok := seen[p.UploadedBy]; ok {
			continue
		}
		seen[p.UploadedBy] = struct{}{}
		ids = append(ids, p.UploadedBy)
	}
	return a.users.GetUsersByIDs(ctx, ids)
}

func uploaderSummary(id uuid.UUID, users map[uuid.UUID]models.User) dto.UploaderSummary {
	u, ok := users[id]
	if !ok {
		return dto.UploaderSummary{ID: id, Name: UnknownUploaderName}
	}
	return newUploaderSummary(&u)
}

func uploaderDetail(id uuid.UUID, users map[uuid.UUID]models.User) dto.UploaderDetail {
	u, ok := users[id]
	if !ok {
		return dto.UploaderDetail{ID: id, Name: UnknownUploaderName}
	}
	return newUploaderDetail(&u)
}

func newUploaderSummary(u *models.User) dto.UploaderSummary {
	s := dto.UploaderSummary{ID: u.ID, Name: u.Name}
	if u.Avatar != nil {
		s.Avatar = *u.Avatar
	}
	return s
}

func newUploaderDetail(u *models.User) dto.UploaderDetail {
	d := dto.UploaderDetail{ID: u.ID, Name: u.Name, Email: u.Email}
	if u.Avatar != nil {
		d.Avatar = *u.Avatar
	}
	if u.University != nil {
		d.University = *u.University
	}
	return d
}
