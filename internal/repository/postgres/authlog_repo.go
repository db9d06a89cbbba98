package postgres

import (
	"context"
	"fmt"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// authLogRepository implements repository.AuthLogRepository for PostgreSQL.
type authLogRepository struct {
	db *DB
}

// NewAuthLogRepository creates a new PostgreSQL auth log repository.
func NewAuthLogRepository(db *DB) repository.AuthLogRepository {
	return &authLogRepository{db: db}
}

// Append records an entry. The table is append-only; no update or delete
// statements exist for it.
func (r *authLogRepository) Append(ctx context.Context, entry *domain.AuthLogEntry) error {
	query := `
		INSERT INTO auth_logs (account, action, ip_address, user_agent, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		entry.Account,
		string(entry.Action),
		entry.IPAddress,
		entry.UserAgent,
		entry.Success,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append auth log entry: %w", err)
	}

	return nil
}

// ListRecent returns the newest entries for operator review.
func (r *authLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuthLogEntry, error) {
	query := `
		SELECT id, account, action, ip_address, user_agent, success, created_at
		FROM auth_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth log entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuthLogEntry
	for rows.Next() {
		entry := &domain.AuthLogEntry{}
		var action string

		err := rows.Scan(
			&entry.ID,
			&entry.Account,
			&action,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.Success,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auth log entry: %w", err)
		}

		entry.Action = domain.AuthAction(action)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth log entries: %w", err)
	}

	return entries, nil
}

// Ensure authLogRepository implements repository.AuthLogRepository.
var _ repository.AuthLogRepository = (*authLogRepository)(nil)
