package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/halcyonworks/webaudit-cli/api/schemas"
	"github.com/halcyonworks/webaudit-cli/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// -- Mocks --

type mockLighthouse struct{ mock.Mock }

func (m *mockLighthouse) Scan(ctx context.Context, url string) (*schemas.LighthouseResult, error) {
	args := m.Called(ctx, url)
	if res := args.Get(0); res != nil {
		return res.(*schemas.LighthouseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAxe struct{ mock.Mock }

func (m *mockAxe) Scan(ctx context.Context, url string) (*schemas.AxeResult, error) {
	args := m.Called(ctx, url)
	if res := args.Get(0); res != nil {
		return res.(*schemas.AxeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPa11y struct{ mock.Mock }

func (m *mockPa11y) Scan(ctx context.Context, url string) (*schemas.Pa11yResult, error) {
	args := m.Called(ctx, url)
	if res := args.Get(0); res != nil {
		return res.(*schemas.Pa11yResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockKeyboard struct{ mock.Mock }

func (m *mockKeyboard) Scan(ctx context.Context, url string) ([]schemas.KeyboardFinding, error) {
	args := m.Called(ctx, url)
	if res := args.Get(0); res != nil {
		return res.([]schemas.KeyboardFinding), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInsighter struct{ mock.Mock }

func (m *mockInsighter) GenerateInsights(ctx context.Context, report *schemas.MergedReport) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}

func (m *mockInsighter) GenerateFixes(ctx context.Context, issues []schemas.Issue) (string, error) {
	args := m.Called(ctx, issues)
	return args.String(0), args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) SaveAudit(ctx context.Context, result *schemas.AuditResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// -- Fixtures --

const testURL = "https://example.com"

func lighthouseFixture() *schemas.LighthouseResult {
	return &schemas.LighthouseResult{
		URL:           testURL,
		Accessibility: schemas.CategoryResult{Score: 80, Issues: []schemas.Issue{}},
		Performance:   schemas.CategoryResult{Score: 90},
	}
}

func axeFixture() *schemas.AxeResult {
	return &schemas.AxeResult{
		Violations: []schemas.AxeFinding{
			{
				ID:     "image-alt",
				Help:   "Images must have alternate text",
				Impact: "critical",
				Tags:   []string{"wcag2a", "wcag111"},
				Nodes:  []schemas.AxeNode{{Target: []string{"img.hero"}}},
			},
		},
		Passes: []schemas.AxeFinding{{ID: "document-title"}},
	}
}

func newTestOrchestrator(t *testing.T, lh *mockLighthouse, axe *mockAxe, pa11y schemas.Pa11yScanner, keyboard schemas.KeyboardScanner, insighter Insighter, store AuditStore) *Orchestrator {
	t.Helper()
	o, err := New(config.NewDefaultConfig(), zap.NewNop(), lh, axe, pa11y, keyboard, insighter, store)
	require.NoError(t, err)
	return o
}

// -- Tests --

func TestNew_RejectsNilDependencies(t *testing.T) {
	_, err := New(nil, zap.NewNop(), new(mockLighthouse), new(mockAxe), nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(config.NewDefaultConfig(), zap.NewNop(), nil, new(mockAxe), nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(config.NewDefaultConfig(), zap.NewNop(), new(mockLighthouse), nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestRun_TwoToolAudit(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	lh.On("Scan", mock.Anything, testURL).Return(lighthouseFixture(), nil)
	axe.On("Scan", mock.Anything, testURL).Return(axeFixture(), nil)

	o := newTestOrchestrator(t, lh, axe, nil, nil, nil, nil)

	var stages []string
	o.OnProgress = func(stage string) { stages = append(stages, stage) }

	result, err := o.Run(context.Background(), testURL)
	require.NoError(t, err)

	assert.NotEmpty(t, result.AuditID)
	assert.Equal(t, testURL, result.URL)
	require.NotNil(t, result.Report)
	assert.Equal(t, 80, result.Report.Accessibility.Scores.Lighthouse)
	assert.Nil(t, result.Report.Accessibility.Scores.Pa11y)
	assert.Empty(t, result.AIInsights)
	assert.Contains(t, stages, "scans complete")
	assert.Contains(t, stages, "results merged")

	lh.AssertExpectations(t)
	axe.AssertExpectations(t)
}

func TestRun_AllScannersContribute(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	pa11y := new(mockPa11y)
	keyboard := new(mockKeyboard)

	lh.On("Scan", mock.Anything, testURL).Return(lighthouseFixture(), nil)
	axe.On("Scan", mock.Anything, testURL).Return(axeFixture(), nil)
	pa11y.On("Scan", mock.Anything, testURL).Return(&schemas.Pa11yResult{
		Score: schemas.Pa11yScore{Score: 60},
		Issues: []schemas.Pa11yIssue{
			{Type: "error", Message: "Img element missing an alt attribute.", Selector: "img.hero"},
		},
	}, nil)
	keyboard.On("Scan", mock.Anything, testURL).Return([]schemas.KeyboardFinding{
		{Title: "Keyboard focus trap", Severity: schemas.SeverityCritical, Selector: "div#modal"},
	}, nil)

	o := newTestOrchestrator(t, lh, axe, pa11y, keyboard, nil, nil)
	result, err := o.Run(context.Background(), testURL)
	require.NoError(t, err)

	scores := result.Report.Accessibility.Scores
	require.NotNil(t, scores.Pa11y)
	assert.Equal(t, 60, *scores.Pa11y)

	bySource := result.Report.Accessibility.Summary.BySource
	assert.NotZero(t, bySource[schemas.SourceKeyboard])
}

func TestRun_ScannerFailureAbortsAudit(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	scanErr := errors.New("chrome crashed")

	lh.On("Scan", mock.Anything, testURL).Return(nil, scanErr)
	axe.On("Scan", mock.Anything, testURL).Return(axeFixture(), nil).Maybe()

	o := newTestOrchestrator(t, lh, axe, nil, nil, nil, nil)
	_, err := o.Run(context.Background(), testURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, scanErr)
}

func TestRun_AIEnrichment(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	insighter := new(mockInsighter)

	lh.On("Scan", mock.Anything, testURL).Return(lighthouseFixture(), nil)
	axe.On("Scan", mock.Anything, testURL).Return(axeFixture(), nil)
	insighter.On("GenerateInsights", mock.Anything, mock.Anything).Return("insights here", nil)
	insighter.On("GenerateFixes", mock.Anything, mock.Anything).Return("fixes here", nil)

	o := newTestOrchestrator(t, lh, axe, nil, nil, insighter, nil)
	result, err := o.Run(context.Background(), testURL)
	require.NoError(t, err)

	assert.Equal(t, "insights here", result.AIInsights)
	assert.Equal(t, "fixes here", result.AIFixes)
	insighter.AssertExpectations(t)
}

func TestRun_AIFailureIsNotFatal(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	insighter := new(mockInsighter)

	lh.On("Scan", mock.Anything, testURL).Return(lighthouseFixture(), nil)
	axe.On("Scan", mock.Anything, testURL).Return(axeFixture(), nil)
	insighter.On("GenerateInsights", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	insighter.On("GenerateFixes", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	o := newTestOrchestrator(t, lh, axe, nil, nil, insighter, nil)
	result, err := o.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.Empty(t, result.AIInsights)
	assert.Empty(t, result.AIFixes)
}

func TestRun_StoreFailureIsNotFatal(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	store := new(mockStore)

	lh.On("Scan", mock.Anything, testURL).Return(lighthouseFixture(), nil)
	axe.On("Scan", mock.Anything, testURL).Return(axeFixture(), nil)
	store.On("SaveAudit", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	o := newTestOrchestrator(t, lh, axe, nil, nil, nil, store)
	result, err := o.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.NotNil(t, result)
	store.AssertExpectations(t)
}

func TestRunAll(t *testing.T) {
	urls := []string{"https://example.com/a", "https://example.com/b"}

	lh := new(mockLighthouse)
	axe := new(mockAxe)
	lh.On("Scan", mock.Anything, urls[0]).Return(lighthouseFixture(), nil)
	lh.On("Scan", mock.Anything, urls[1]).Return(nil, errors.New("timeout"))
	axe.On("Scan", mock.Anything, mock.Anything).Return(axeFixture(), nil).Maybe()

	o := newTestOrchestrator(t, lh, axe, nil, nil, nil, nil)
	o.cfg.Audit.RateLimit = 1000

	results, err := o.RunAll(context.Background(), urls)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, urls[0], results[0].URL)
}

func TestRunAll_AllFailed(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)
	lh.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	axe.On("Scan", mock.Anything, mock.Anything).Return(axeFixture(), nil).Maybe()

	o := newTestOrchestrator(t, lh, axe, nil, nil, nil, nil)
	o.cfg.Audit.RateLimit = 1000

	_, err := o.RunAll(context.Background(), []string{"https://example.com"})
	assert.Error(t, err)
}

func TestRunAll_CancelledContext(t *testing.T) {
	lh := new(mockLighthouse)
	axe := new(mockAxe)

	o := newTestOrchestrator(t, lh, axe, nil, nil, nil, nil)
	// A tiny rate limit forces the limiter to block, so cancellation wins.
	o.cfg.Audit.RateLimit = 0.001

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.RunAll(ctx, []string{"https://example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
