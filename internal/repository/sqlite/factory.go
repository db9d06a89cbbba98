package sqlite

import (
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// NewRepositories wires all SQLite repositories over one connection.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Product: NewProductRepository(db),
		Order:   NewOrderRepository(db),
		AuthLog: NewAuthLogRepository(db),
	}
}
