package repositories

import (
	"github.com/yigit/paperarchive/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	PaperRepository *PaperRepository
	UserRepository  *UserRepository
}

// NewRepositories initializes all repositories
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		PaperRepository: NewPaperRepository(conn),
		UserRepository:  NewUserRepository(conn),
	}
}
