package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/db"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/dberrors"
	"github.com/yigit/paperarchive/internal/pkg/logger"
)

var userColumns = []string{
	"id", "name", "email", "password", "avatar", "university", "role", "created_at", "updated_at",
}

// UserProfileUpdate lists the profile fields to change. Nil fields are left as is.
type UserProfileUpdate struct {
	Name       *string
	University *string
	Avatar     *string
}

// IsEmpty reports whether the update changes nothing
func (u UserProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.University == nil && u.Avatar == nil
}

// UserRepository handles user database operations
type UserRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX) *UserRepository {
	return &UserRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateUser inserts a new user. A duplicate email yields ErrEmailAlreadyExists.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	sql, args, err := r.sb.Insert("users").
		Columns("id", "name", "email", "password", "avatar", "university", "role").
		Values(user.ID, user.Name, user.Email, user.Password, user.Avatar, user.University, string(user.Role)).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Msg("Error creating user")
		return apperrors.NewStoreError("create user", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "get user", squirrel.Eq{"id": id})
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get user by email", squirrel.Eq{"email": email})
}

// GetUsersByIDs fetches every existing user among ids in a single round trip.
// Ids with no matching account are simply absent from the result.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	users := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("count", len(ids)).Msg("Error fetching users")
		return nil, apperrors.NewStoreError("get users", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("get users", err)
		}
		users[user.ID] = *user
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("get users", err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of update and returns the stored user
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update UserProfileUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return r.GetUserByID(ctx, id)
	}

	query := r.sb.Update("users")
	if update.Name != nil {
		query = query.Set("name", *update.Name)
	}
	if update.University != nil {
		query = query.Set("university", *update.University)
	}
	if update.Avatar != nil {
		query = query.Set("avatar", *update.Avatar)
	}

	sql, args, err := query.
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update profile query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error updating profile")
		return nil, apperrors.NewStoreError("update profile", err)
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("op", op).Msg("Error fetching user")
		return nil, apperrors.NewStoreError(op, err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.University,
		&role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.RoleType(role)
	return &u, nil
}
