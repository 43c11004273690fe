package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/dev-bhaskar8/lp-data/internal/acquisition"
	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/export"
	"github.com/dev-bhaskar8/lp-data/internal/ranking"
	"github.com/dev-bhaskar8/lp-data/internal/storage"
)

// TimeframeReport is one timeframe's ranked output
type TimeframeReport struct {
	Timeframe contracts.Timeframe    `json:"timeframe"`
	Ranked    []contracts.PairResult `json:"ranked"`
	Top       []contracts.PairResult `json:"top"`
	Errors    []ranking.TagCount     `json:"errors"`
	Numeric   int                    `json:"numeric"`
}

// Report is the full outcome of one run
// ⭐ SSOT: Runner → API/CLI/스토리지 전달
type Report struct {
	RunID          uuid.UUID           `json:"run_id"`
	AsOf           time.Time           `json:"as_of"`
	StartedAt      time.Time           `json:"started_at"`
	Duration       time.Duration       `json:"duration"`
	TimeframesHash string              `json:"timeframes_hash"`
	Universe       *contracts.Universe `json:"universe"`
	Acquisition    *acquisition.Result `json:"acquisition"`
	Timeframes     []TimeframeReport   `json:"timeframes"`
	Exported       []string            `json:"exported,omitempty"`
}

// Timeframe finds a timeframe's report by label
func (r *Report) Timeframe(label string) (*TimeframeReport, bool) {
	for i := range r.Timeframes {
		if r.Timeframes[i].Timeframe.Label == label {
			return &r.Timeframes[i], true
		}
	}
	return nil, false
}

// AcquisitionSummary returns the console view of the acquisition result
func (r *Report) AcquisitionSummary() export.AcquisitionSummary {
	if r.Acquisition == nil {
		return export.AcquisitionSummary{}
	}
	return export.AcquisitionSummary{
		ViaPrimary:  r.Acquisition.ViaPrimary,
		ViaFallback: r.Acquisition.ViaFallback,
		ViaCache:    r.Acquisition.ViaCache,
		Failed:      r.Acquisition.Failed,
		Duration:    r.Acquisition.Duration,
	}
}

// toRun converts the report into its stored form
func (r *Report) toRun() *storage.Run {
	run := &storage.Run{
		ID:             r.RunID,
		AsOf:           r.AsOf,
		StartedAt:      r.StartedAt,
		Duration:       r.Duration,
		TimeframesHash: r.TimeframesHash,
		Symbols:        r.Universe.Symbols(),
	}
	if r.Acquisition != nil {
		run.Failed = r.Acquisition.Failed
	}
	for _, tf := range r.Timeframes {
		run.Timeframes = append(run.Timeframes, storage.TimeframeRanking{
			Label:   tf.Timeframe.Label,
			Results: tf.Ranked,
		})
	}
	return run
}
