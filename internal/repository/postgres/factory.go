package postgres

import (
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// NewRepositories creates all PostgreSQL repository implementations.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Product: NewProductRepository(db),
		Order:   NewOrderRepository(db),
		AuthLog: NewAuthLogRepository(db),
	}
}
