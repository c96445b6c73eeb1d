// Package postgres implements the issue repository against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/svsu-dev/samadhan/internal/domain"
)

// IssueRepo implements issues.Repository against PostgreSQL.
type IssueRepo struct{ db *sql.DB }

// NewIssueRepo creates a Postgres-backed issue repository.
func NewIssueRepo(db *sql.DB) *IssueRepo { return &IssueRepo{db: db} }

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the issues table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS issues (
			id               UUID PRIMARY KEY,
			applicant_name   TEXT NOT NULL,
			email            TEXT NOT NULL,
			issue_text       TEXT NOT NULL,
			department       TEXT NOT NULL,
			subject          TEXT NOT NULL,
			application_body TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure issues schema: %w", err)
	}
	return nil
}

func (r *IssueRepo) Insert(ctx context.Context, rec domain.IssueRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO issues
			(id, applicant_name, email, issue_text, department, subject, application_body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.ApplicantName, rec.Email, rec.IssueText,
		string(rec.Department), rec.Subject, rec.Body, rec.CreatedAt)
	if err != nil {
		return &domain.PersistenceError{Op: "insert issue", Err: err}
	}
	return nil
}

func (r *IssueRepo) ListRecent(ctx context.Context, limit int) ([]domain.IssueSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT subject, department, created_at
		FROM issues
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list recent issues", Err: err}
	}
	defer rows.Close()

	var out []domain.IssueSummary
	for rows.Next() {
		var s domain.IssueSummary
		if err := rows.Scan(&s.Subject, &s.Department, &s.CreatedAt); err != nil {
			return nil, &domain.PersistenceError{Op: "scan issue summary", Err: err}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "list recent issues", Err: err}
	}
	return out, nil
}
