// Package store persists finished audits to PostgreSQL so past results can
// be listed and re-rendered. The database is optional; the CLI works without
// one configured.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound is returned when no audit matches the requested ID.
var ErrNotFound = errors.New("audit not found")

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store provides a PostgreSQL implementation of audit persistence.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

const sqlCreateAudits = `
    CREATE TABLE IF NOT EXISTS audits (
        id UUID PRIMARY KEY,
        url TEXT NOT NULL,
        started_at TIMESTAMPTZ NOT NULL,
        duration_ms BIGINT NOT NULL,
        combined_score INT NOT NULL,
        grade TEXT NOT NULL,
        report JSONB NOT NULL,
        ai_insights TEXT NOT NULL DEFAULT '',
        ai_fixes TEXT NOT NULL DEFAULT ''
    );
`

// New creates a new store instance, verifies the connection and ensures the
// audits table exists.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, sqlCreateAudits); err != nil {
		return nil, fmt.Errorf("failed to ensure audits table: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const sqlInsertAudit = `
    INSERT INTO audits (id, url, started_at, duration_ms, combined_score, grade, report, ai_insights, ai_fixes)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// SaveAudit persists one finished audit.
func (s *Store) SaveAudit(ctx context.Context, result *schemas.AuditResult) error {
	if result == nil || result.Report == nil {
		return fmt.Errorf("audit result has no report")
	}

	report, err := json.Marshal(result.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.pool.Exec(ctx, sqlInsertAudit,
		result.AuditID,
		result.URL,
		result.StartedAt.UTC(),
		result.Duration.Milliseconds(),
		result.Report.Accessibility.Scores.Combined,
		result.Report.Accessibility.Scores.Grade,
		report,
		result.AIInsights,
		result.AIFixes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit: %w", err)
	}

	s.log.Debug("Persisted audit", zap.String("audit_id", result.AuditID), zap.String("url", result.URL))
	return nil
}

const sqlSelectAudit = `
    SELECT id, url, started_at, duration_ms, report, ai_insights, ai_fixes
    FROM audits WHERE id = $1;
`

// GetAudit loads one audit by ID.
func (s *Store) GetAudit(ctx context.Context, auditID string) (*schemas.AuditResult, error) {
	var (
		result     schemas.AuditResult
		durationMs int64
		rawReport  []byte
	)

	row := s.pool.QueryRow(ctx, sqlSelectAudit, auditID)
	err := row.Scan(&result.AuditID, &result.URL, &result.StartedAt, &durationMs, &rawReport, &result.AIInsights, &result.AIFixes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, auditID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load audit %s: %w", auditID, err)
	}

	result.Duration = time.Duration(durationMs) * time.Millisecond
	if err := json.Unmarshal(rawReport, &result.Report); err != nil {
		return nil, fmt.Errorf("failed to decode stored report for %s: %w", auditID, err)
	}
	return &result, nil
}

// AuditSummary is one row of the audit history listing.
type AuditSummary struct {
	AuditID       string    `json:"auditId"`
	URL           string    `json:"url"`
	StartedAt     time.Time `json:"startedAt"`
	CombinedScore int       `json:"combinedScore"`
	Grade         string    `json:"grade"`
}

const sqlListAudits = `
    SELECT id, url, started_at, combined_score, grade
    FROM audits ORDER BY started_at DESC LIMIT $1;
`

// ListAudits returns the most recent audits, newest first.
func (s *Store) ListAudits(ctx context.Context, limit int) ([]AuditSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, sqlListAudits, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()

	summaries := []AuditSummary{}
	for rows.Next() {
		var s AuditSummary
		if err := rows.Scan(&s.AuditID, &s.URL, &s.StartedAt, &s.CombinedScore, &s.Grade); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading audit rows: %w", err)
	}
	return summaries, nil
}
