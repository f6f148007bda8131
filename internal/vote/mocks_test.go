package vote

import (
	"context"
	"sync"

	"github.com/pscheid92/tradesbychat/internal/domain"
)

type fetchResult struct {
	comments []domain.Comment
	err      error
}

// mockFeed returns scripted batches in order and empty batches once exhausted.
type mockFeed struct {
	mu      sync.Mutex
	batches []fetchResult
	calls   int
}

func (m *mockFeed) Fetch(_ context.Context) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.batches) == 0 {
		return nil, nil
	}
	next := m.batches[0]
	m.batches = m.batches[1:]
	return next.comments, next.err
}

func (m *mockFeed) push(comments ...domain.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, fetchResult{comments: comments})
}

func (m *mockFeed) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, fetchResult{err: err})
}

func (m *mockFeed) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockDispatcher struct {
	mu        sync.Mutex
	decisions []domain.Decision
	err       error
}

func (m *mockDispatcher) Dispatch(_ context.Context, d domain.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
	return m.err
}

func (m *mockDispatcher) getDecisions() []domain.Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Decision, len(m.decisions))
	copy(result, m.decisions)
	return result
}

type mockRecorder struct {
	mu     sync.Mutex
	rounds []domain.Decision
	err    error
}

func (m *mockRecorder) RecordRound(_ context.Context, d domain.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, d)
	return m.err
}

func (m *mockRecorder) getRounds() []domain.Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.Decision, len(m.rounds))
	copy(result, m.rounds)
	return result
}

func comment(voter, text string) domain.Comment {
	return domain.Comment{VoterID: voter, VoterName: voter, Text: text}
}
