package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dev-bhaskar8/lp-data/internal/api"
	"github.com/dev-bhaskar8/lp-data/internal/api/handlers"
	"github.com/dev-bhaskar8/lp-data/internal/scheduler"
	"github.com/dev-bhaskar8/lp-data/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "결과 API 서버 + 스케줄러 시작",
	Long: `Starts the read-only results API and runs the scan on a cron schedule.

Endpoints:
  GET  /health                  - Health check
  GET  /metrics                 - Prometheus metrics
  GET  /api/results             - Latest run with top pairs per timeframe
  GET  /api/results/{timeframe} - Full ranking (?limit=N&numeric=true)
  GET  /api/errors              - Failed symbols and tag counts
  GET  /api/universe            - Latest universe with exclusions
  GET  /api/jobs                - Scheduler statistics
  POST /api/jobs/{name}/run     - Trigger a job now

Example:
  go run ./cmd/corrscan serve
  go run ./cmd/corrscan serve --schedule "@every 6h" --run-now`,
	RunE: runServe,
}

var (
	servePort     string
	serveSchedule string
	serveRunNow   bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API port (default: PORT)")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", jobs.DefaultSchedule, "scan cron schedule, with seconds")
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "run a scan immediately on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	// 1. Scheduler
	store := api.NewStore()
	sched := scheduler.New(a.log)
	job := jobs.NewCorrelationJob(a.newRunner(a.options), store, serveSchedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if serveRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	// 2. API
	router := api.NewRouter(
		handlers.NewResultsHandler(store, a.log),
		handlers.NewJobsHandler(sched, a.log),
		a.log,
	)
	server := api.New(a.cfg, a.log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	if next, err := sched.NextRun(job.Name()); err == nil {
		fmt.Printf("   Next scan at %s\n", next.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
