package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/repositories"
)

// Services defined in this package:
// - PaperService: listing, lookup, upload and deletion of question papers
// - ResultAssembler: joins papers with their uploader identity
// - AuthService: registration, login and the current user
// - UserService: public profiles and profile editing

// Actor is the authenticated caller of a mutating operation
type Actor struct {
	UserID uuid.UUID
	Role   models.RoleType
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanManage reports whether the actor may modify something owned by ownerID
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.IsAdmin() || (a.UserID != uuid.Nil && a.UserID == ownerID)
}

// PaperStore is the paper persistence the services depend on
type PaperStore interface {
	CountPapers(ctx context.Context, filter models.PaperFilter) (int64, error)
	ListPapers(ctx context.Context, filter models.PaperFilter, offset, limit uint64) ([]models.QuestionPaper, error)
	ListPapersByUploader(ctx context.Context, uploaderID uuid.UUID) ([]models.QuestionPaper, error)
	GetPaperByID(ctx context.Context, id uuid.UUID) (*models.QuestionPaper, error)
	CreatePaper(ctx context.Context, paper *models.QuestionPaper) error
	DeletePaper(ctx context.Context, id uuid.UUID) error
}

// UserLookup batch-resolves user identities. Unknown ids are absent from the result.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// UserStore is the user persistence the services depend on
type UserStore interface {
	UserLookup
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update repositories.UserProfileUpdate) (*models.User, error)
}

var (
	_ PaperStore = (*repositories.PaperRepository)(nil)
	_ UserStore  = (*repositories.UserRepository)(nil)
)
