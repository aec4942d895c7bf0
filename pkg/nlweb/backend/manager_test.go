package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlweb-ai/nlweb-go/pkg/config"
	"github.com/nlweb-ai/nlweb-go/pkg/nlweb"
)

// fakeBackend returns canned results or a canned error.
type fakeBackend struct {
	results []nlweb.Result
	err     error
	delay   time.Duration
}

func (f *fakeBackend) Search(ctx context.Context, _, _ string, _ int) ([]nlweb.Result, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func managerCfg() config.MultiBackendConfig {
	return config.MultiBackendConfig{
		Enabled:                   true,
		EnableParallelQuerying:    true,
		EnableResultDeduplication: true,
		MaxConcurrentQueries:      4,
		BackendTimeoutSeconds:     1,
	}
}

func newTestManager(t *testing.T, cfg config.MultiBackendConfig, eps ...*Endpoint) *Manager {
	t.Helper()
	r := NewRegistry("")
	for _, ep := range eps {
		require.NoError(t, r.Register(ep))
	}
	return NewManager(r, cfg)
}

func TestQueryNoBackends(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg())
	_, err := m.Query(context.Background(), "anything", "", 10)
	require.ErrorIs(t, err, nlweb.ErrNoBackends)
}

func TestQueryMergesAndSorts(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "a", Enabled: true, Priority: 1, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://a/1", Name: "one", Score: 0.9},
			{URL: "https://a/2", Name: "two", Score: 0.7},
		}}},
		&Endpoint{ID: "b", Enabled: true, Priority: 2, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://b/1", Name: "three", Score: 0.8},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "https://a/1", results[0].URL)
	assert.Equal(t, "https://b/1", results[1].URL)
	assert.Equal(t, "https://a/2", results[2].URL)
	assert.Equal(t, "a", results[0].BackendSource)
}

func TestQueryDeduplicatesByURL(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "low", Enabled: true, Priority: 1, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "HTTPS://Site/Doc ", Score: 0.9, Name: "from-low"},
		}}},
		&Endpoint{ID: "high", Enabled: true, Priority: 5, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://site/doc", Score: 0.5, Name: "from-high"},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// The higher score wins regardless of backend priority.
	assert.Equal(t, "from-low", results[0].Name)
}

func TestQueryDedupTieBreaksOnPriority(t *testing.T) {
	t.Parallel()

	cfg := managerCfg()
	cfg.EnableParallelQuerying = false // deterministic arrival order

	m := newTestManager(t, cfg,
		&Endpoint{ID: "high", Enabled: true, Priority: 5, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://site/doc", Score: 0.5, Name: "from-high"},
		}}},
		&Endpoint{ID: "low", Enabled: true, Priority: 1, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://site/doc", Score: 0.5, Name: "from-low"},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "from-high", results[0].Name)
}

func TestQueryDedupDisabled(t *testing.T) {
	t.Parallel()

	cfg := managerCfg()
	cfg.EnableResultDeduplication = false

	m := newTestManager(t, cfg,
		&Endpoint{ID: "a", Enabled: true, Priority: 1, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://site/doc", Score: 0.5},
			{URL: "https://site/doc", Score: 0.4},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryTruncatesToMaxResults(t *testing.T) {
	t.Parallel()

	many := make([]nlweb.Result, 20)
	for i := range many {
		many[i] = nlweb.Result{URL: string(rune('a'+i)) + "://doc", Score: float64(20-i) / 20}
	}

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "a", Enabled: true, Backend: &fakeBackend{results: many}},
	)

	results, err := m.Query(context.Background(), "q", "", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	// Highest scores survive truncation.
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestQueryAbsorbsPartialFailure(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "dead", Enabled: true, Backend: &fakeBackend{err: errors.New("connection refused")}},
		&Endpoint{ID: "alive", Enabled: true, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://a/1", Score: 0.9},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alive", results[0].BackendSource)
}

func TestQueryAllBackendsFail(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "a", Enabled: true, Backend: &fakeBackend{err: errors.New("boom")}},
		&Endpoint{ID: "b", Enabled: true, Backend: &fakeBackend{err: errors.New("bang")}},
	)

	_, err := m.Query(context.Background(), "q", "", 10)
	require.ErrorIs(t, err, nlweb.ErrBackendUnavailable)
}

func TestQuerySkipsNotImplemented(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "write-only", Enabled: true, Backend: &fakeBackend{err: nlweb.ErrNotImplemented}},
		&Endpoint{ID: "search", Enabled: true, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://a/1", Score: 0.9},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQueryAllNotImplementedIsEmptySuccess(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "a", Enabled: true, Backend: &fakeBackend{err: nlweb.ErrNotImplemented}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryBackendTimeoutIsAbsorbed(t *testing.T) {
	t.Parallel()

	cfg := managerCfg()
	cfg.BackendTimeoutSeconds = 1

	m := newTestManager(t, cfg,
		&Endpoint{ID: "slow", Enabled: true, Backend: &fakeBackend{
			delay:   5 * time.Second,
			results: []nlweb.Result{{URL: "https://slow/1", Score: 1.0}},
		}},
		&Endpoint{ID: "fast", Enabled: true, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://fast/1", Score: 0.5},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://fast/1", results[0].URL)
}

func TestQuerySerialMode(t *testing.T) {
	t.Parallel()

	cfg := managerCfg()
	cfg.EnableParallelQuerying = false

	m := newTestManager(t, cfg,
		&Endpoint{ID: "a", Enabled: true, Priority: 1, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://a/1", Score: 0.5},
		}}},
		&Endpoint{ID: "b", Enabled: true, Priority: 9, Backend: &fakeBackend{results: []nlweb.Result{
			{URL: "https://b/1", Score: 0.5},
		}}},
	)

	results, err := m.Query(context.Background(), "q", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Equal scores: the higher-priority backend sorts first.
	assert.Equal(t, "https://b/1", results[0].URL)
}

func TestQueryCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(t, managerCfg(),
		&Endpoint{ID: "a", Enabled: true, Backend: &fakeBackend{delay: time.Second}},
	)

	_, err := m.Query(ctx, "q", "", 10)
	require.ErrorIs(t, err, context.Canceled)
}
