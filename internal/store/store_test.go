package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func newMockedStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()

	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	mockPool.ExpectExec(flexibleSQLMatcher(sqlCreateAudits)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	store, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)
	return store, mockPool
}

func sampleAuditResult() *schemas.AuditResult {
	return &schemas.AuditResult{
		AuditID:   uuid.NewString(),
		URL:       "https://example.com",
		StartedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		Duration:  42 * time.Second,
		Report: &schemas.MergedReport{
			URL: "https://example.com",
			Accessibility: schemas.AccessibilityReport{
				Scores: schemas.ScoreSet{Lighthouse: 80, Axe: 70, Combined: 75, Grade: "C"},
			},
		},
		AIInsights: "summary",
	}
}

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should create the audits table", func(t *testing.T) {
		_, mockPool := newMockedStore(t)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestSaveAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("should insert one row per audit", func(t *testing.T) {
		store, mockPool := newMockedStore(t)
		result := sampleAuditResult()

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertAudit)).
			WithArgs(result.AuditID, result.URL, result.StartedAt.UTC(), int64(42000),
				75, "C", pgxmock.AnyArg(), "summary", "").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.SaveAudit(ctx, result))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should reject a result without a report", func(t *testing.T) {
		store, _ := newMockedStore(t)
		err := store.SaveAudit(ctx, &schemas.AuditResult{AuditID: "x"})
		assert.Error(t, err)
	})

	t.Run("should propagate database errors", func(t *testing.T) {
		store, mockPool := newMockedStore(t)
		dbErr := errors.New("disk full")

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertAudit)).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)

		err := store.SaveAudit(ctx, sampleAuditResult())
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestGetAudit(t *testing.T) {
	ctx := context.Background()

	t.Run("should load and decode a stored audit", func(t *testing.T) {
		store, mockPool := newMockedStore(t)
		want := sampleAuditResult()
		rawReport, err := json.Marshal(want.Report)
		require.NoError(t, err)

		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectAudit)).
			WithArgs(want.AuditID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "url", "started_at", "duration_ms", "report", "ai_insights", "ai_fixes"}).
				AddRow(want.AuditID, want.URL, want.StartedAt, int64(42000), rawReport, want.AIInsights, ""))

		got, err := store.GetAudit(ctx, want.AuditID)
		require.NoError(t, err)
		assert.Equal(t, want.AuditID, got.AuditID)
		assert.Equal(t, 42*time.Second, got.Duration)
		assert.Equal(t, 75, got.Report.Accessibility.Scores.Combined)
		assert.Equal(t, "summary", got.AIInsights)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should map missing rows to ErrNotFound", func(t *testing.T) {
		store, mockPool := newMockedStore(t)

		mockPool.ExpectQuery(flexibleSQLMatcher(sqlSelectAudit)).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{"id", "url", "started_at", "duration_ms", "report", "ai_insights", "ai_fixes"}))

		_, err := store.GetAudit(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListAudits(t *testing.T) {
	ctx := context.Background()

	t.Run("should list audits newest first", func(t *testing.T) {
		store, mockPool := newMockedStore(t)
		now := time.Now().UTC()

		mockPool.ExpectQuery(flexibleSQLMatcher(sqlListAudits)).
			WithArgs(5).
			WillReturnRows(pgxmock.NewRows([]string{"id", "url", "started_at", "combined_score", "grade"}).
				AddRow("audit-2", "https://example.com/b", now, 91, "A").
				AddRow("audit-1", "https://example.com/a", now.Add(-time.Hour), 48, "F"))

		summaries, err := store.ListAudits(ctx, 5)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "audit-2", summaries[0].AuditID)
		assert.Equal(t, "A", summaries[0].Grade)
		assert.Equal(t, 48, summaries[1].CombinedScore)
	})

	t.Run("should default a non-positive limit", func(t *testing.T) {
		store, mockPool := newMockedStore(t)

		mockPool.ExpectQuery(flexibleSQLMatcher(sqlListAudits)).
			WithArgs(20).
			WillReturnRows(pgxmock.NewRows([]string{"id", "url", "started_at", "combined_score", "grade"}))

		summaries, err := store.ListAudits(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}
