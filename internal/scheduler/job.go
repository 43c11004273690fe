package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes the job once and reports what it produced
	Run(ctx context.Context) (Outcome, error)

	// Schedule is a six-field cron expression, e.g. "0 5 0 * * *", or a descriptor like "@every 6h"
	Schedule() string
}

// Outcome is what a successful scan produced
type Outcome struct {
	RunID   string `json:"run_id,omitempty"`
	Symbols int    `json:"symbols"`
	Failed  int    `json:"failed"`
	Pairs   int    `json:"pairs"`
	Numeric int    `json:"numeric"`
}

// maxHistory is the number of results kept per job
const maxHistory = 100

// JobResult is one execution, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Outcome   *Outcome      `json:"outcome,omitempty"` // 성공 시에만
}

// JobHistory keeps the most recent results plus lifetime counters
type JobHistory struct {
	Results   []JobResult
	TotalRuns int
	Failures  int
}

// AddResult records a result, dropping the oldest beyond maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.TotalRuns++
	if !result.Success {
		h.Failures++
	}

	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return nil
	}
	return h.Results[len(h.Results)-n:]
}

// LastSuccess returns the newest successful result, or nil
func (h *JobHistory) LastSuccess() *JobResult {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success {
			return &h.Results[i]
		}
	}
	return nil
}

// LastFailure returns the newest failed result, or nil
func (h *JobHistory) LastFailure() *JobResult {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if !h.Results[i].Success {
			return &h.Results[i]
		}
	}
	return nil
}

// SuccessRate is computed over lifetime counters, not only the retained window
func (h *JobHistory) SuccessRate() float64 {
	if h.TotalRuns == 0 {
		return 0
	}
	return float64(h.TotalRuns-h.Failures) / float64(h.TotalRuns)
}

func (h *JobHistory) clone() *JobHistory {
	results := make([]JobResult, len(h.Results))
	copy(results, h.Results)
	return &JobHistory{Results: results, TotalRuns: h.TotalRuns, Failures: h.Failures}
}
