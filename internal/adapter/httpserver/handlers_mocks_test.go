package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pscheid92/tradesbychat/internal/domain"
	"github.com/pscheid92/tradesbychat/internal/platform/config"
	"github.com/pscheid92/tradesbychat/internal/vote"
)

type mockStatus struct {
	status vote.Status
}

func (m *mockStatus) Status() vote.Status { return m.status }

type mockHistory struct {
	mu        sync.Mutex
	rounds    []domain.Decision
	err       error
	lastLimit int
}

func (m *mockHistory) ListRecent(_ context.Context, limit int) ([]domain.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.rounds) {
		return m.rounds[:limit], nil
	}
	return m.rounds, nil
}

func (m *mockHistory) GetByID(_ context.Context, id uuid.UUID) (*domain.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rounds {
		if r.RoundID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrRoundNotFound
}

type testServerOption func(*testServerOpts)

type testServerOpts struct {
	status       statusSource
	history      domain.RoundHistory
	healthChecks []HealthCheck
	rateLimit    float64
}

func withHistory(h domain.RoundHistory) testServerOption {
	return func(o *testServerOpts) { o.history = h }
}

func withStatus(s vote.Status) testServerOption {
	return func(o *testServerOpts) { o.status = &mockStatus{status: s} }
}

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(o *testServerOpts) { o.healthChecks = checks }
}

func withRateLimit(r float64) testServerOption {
	return func(o *testServerOpts) { o.rateLimit = r }
}

func newTestServer(t *testing.T, opts ...testServerOption) *Server {
	t.Helper()
	o := &testServerOpts{status: &mockStatus{}}
	for _, opt := range opts {
		opt(o)
	}

	cfg := &config.Config{
		Port:           "0",
		FeedID:         "feed-1",
		TradingSymbol:  "ES 03-25",
		TradingAccount: "Sim101",
		APIRateLimit:   o.rateLimit,
	}
	return NewServer(cfg, o.status, o.history, nil, nil, o.healthChecks)
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "1.2.3.4:1234"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	return doRequest(srv, http.MethodGet, target)
}
