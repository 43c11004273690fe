package jobs

import (
	"context"
	"fmt"

	"github.com/dev-bhaskar8/lp-data/internal/pipeline"
	"github.com/dev-bhaskar8/lp-data/internal/scheduler"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// DefaultSchedule runs shortly after the UTC daily candle closes
const DefaultSchedule = "0 5 0 * * *"

// Runner performs one pipeline run
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Publisher receives every completed report
type Publisher interface {
	Set(report *pipeline.Report)
}

// CorrelationJob runs the correlation pipeline on a schedule and publishes the report
// ⭐ SSOT: 상관관계 스캔 스케줄은 이 Job에서만
type CorrelationJob struct {
	runner    Runner
	publisher Publisher
	schedule  string
	logger    *logger.Logger
}

// NewCorrelationJob creates a new correlation job; an empty schedule means DefaultSchedule
func NewCorrelationJob(runner Runner, publisher Publisher, schedule string, log *logger.Logger) *CorrelationJob {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &CorrelationJob{
		runner:    runner,
		publisher: publisher,
		schedule:  schedule,
		logger:    log.Module("correlation_job"),
	}
}

// Name returns the job name
func (j *CorrelationJob) Name() string {
	return "correlation_scan"
}

// Schedule returns the cron schedule
func (j *CorrelationJob) Schedule() string {
	return j.schedule
}

var _ scheduler.Job = (*CorrelationJob)(nil)

// Run executes one scan. The previous report stays published when the run fails.
func (j *CorrelationJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	j.logger.Info("Starting scheduled correlation scan")

	report, err := j.runner.Run(ctx)
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("correlation scan: %w", err)
	}

	if j.publisher != nil {
		j.publisher.Set(report)
	}

	outcome := summarize(report)
	j.logger.WithFields(map[string]interface{}{
		"run_id":     outcome.RunID,
		"universe":   outcome.Symbols,
		"failed":     outcome.Failed,
		"pairs":      outcome.Pairs,
		"numeric":    outcome.Numeric,
		"timeframes": len(report.Timeframes),
	}).Info("Correlation scan published")

	return outcome, nil
}

func summarize(report *pipeline.Report) scheduler.Outcome {
	out := scheduler.Outcome{RunID: report.RunID.String()}
	if report.Universe != nil {
		out.Symbols = report.Universe.Count()
	}
	if report.Acquisition != nil {
		out.Failed = len(report.Acquisition.Failed)
	}
	for _, tf := range report.Timeframes {
		out.Pairs += len(tf.Ranked)
		out.Numeric += tf.Numeric
	}
	return out
}
