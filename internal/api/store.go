package api

import (
	"sync"

	"github.com/dev-bhaskar8/lp-data/internal/pipeline"
)

// Store holds the latest completed report for the read-only API
// ⭐ SSOT: API 가 보는 결과는 여기서만 교체
type Store struct {
	mu     sync.RWMutex
	report *pipeline.Report
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current report
func (s *Store) Set(report *pipeline.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
}

// Latest returns the current report, or nil before the first run
func (s *Store) Latest() *pipeline.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}
