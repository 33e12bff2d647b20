package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Password   string    `json:"-" db:"password"`
	Avatar     *string   `json:"avatar,omitempty" db:"avatar"`
	University *string   `json:"university,omitempty" db:"university"`
	Role       RoleType  `json:"role" db:"role"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
