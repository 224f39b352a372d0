package store

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) InsertContactSubmission(ctx context.Context, sub ContactSubmission) error {
	const insert = `
		INSERT INTO contact_submissions (id, name, email, phone, message, locale, ip_hash, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := s.db.ExecContext(ctx, insert,
		sub.ID, sub.Name, sub.Email, sub.Phone, sub.Message, sub.Locale, sub.IPHash, sub.UserAgent, sub.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkContactNotified(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE contact_submissions SET notified = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark contact submission notified: %w", err)
	}
	return nil
}

// ListContactSubmissions returns the newest submissions first.
func (s *PostgresStore) ListContactSubmissions(ctx context.Context, limit int) ([]ContactSubmission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, message, locale, ip_hash, user_agent, notified, created_at
		FROM contact_submissions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	var out []ContactSubmission
	for rows.Next() {
		var sub ContactSubmission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.Message, &sub.Locale,
			&sub.IPHash, &sub.UserAgent, &sub.Notified, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact submissions: %w", err)
	}
	return out, nil
}
