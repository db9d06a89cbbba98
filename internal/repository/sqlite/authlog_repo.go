package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/meridian-backoffice/internal/domain"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
)

// authLogRepository implements repository.AuthLogRepository for SQLite.
type authLogRepository struct {
	db *DB
}

// NewAuthLogRepository creates a new SQLite auth log repository.
func NewAuthLogRepository(db *DB) repository.AuthLogRepository {
	return &authLogRepository{db: db}
}

// Append records an entry. The table is append-only; no update or delete
// statements exist for it.
func (r *authLogRepository) Append(ctx context.Context, entry *domain.AuthLogEntry) error {
	query := `
		INSERT INTO auth_logs (account, action, ip_address, user_agent, success, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.Account,
		string(entry.Action),
		entry.IPAddress,
		entry.UserAgent,
		boolToInt(entry.Success),
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append auth log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	entry.ID = id

	return nil
}

// ListRecent returns the newest entries for operator review.
func (r *authLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuthLogEntry, error) {
	query := `
		SELECT id, account, action, ip_address, user_agent, success, created_at
		FROM auth_logs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth log entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuthLogEntry
	for rows.Next() {
		entry := &domain.AuthLogEntry{}
		var action string
		var success int
		var createdAt string

		err := rows.Scan(
			&entry.ID,
			&entry.Account,
			&action,
			&entry.IPAddress,
			&entry.UserAgent,
			&success,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auth log entry: %w", err)
		}

		entry.Action = domain.AuthAction(action)
		entry.Success = success != 0
		entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth log entries: %w", err)
	}

	return entries, nil
}

// Ensure authLogRepository implements repository.AuthLogRepository.
var _ repository.AuthLogRepository = (*authLogRepository)(nil)
