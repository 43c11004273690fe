package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
	"github.com/dev-bhaskar8/lp-data/internal/pipeline"
	"github.com/dev-bhaskar8/lp-data/internal/ranking"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// ReportSource provides the latest completed report
type ReportSource interface {
	Latest() *pipeline.Report
}

// ResultsHandler serves correlation results
// ⭐ SSOT: 결과 조회 API 핸들러는 이 구조체에서만
type ResultsHandler struct {
	source ReportSource
	logger *logger.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(source ReportSource, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{
		source: source,
		logger: log,
	}
}

// TimeframeSummary is one timeframe without its full ranking
type TimeframeSummary struct {
	Label   string                 `json:"label"`
	Window  int                    `json:"window_days"`
	Pairs   int                    `json:"pairs"`
	Numeric int                    `json:"numeric"`
	Top     []contracts.PairResult `json:"top"`
	Errors  []ranking.TagCount     `json:"errors"`
}

// SummaryResponse is the body of GET /api/results
type SummaryResponse struct {
	RunID      string             `json:"run_id"`
	AsOf       string             `json:"as_of"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   string             `json:"duration"`
	Universe   []contracts.Asset  `json:"universe"`
	Failed     []string           `json:"failed"`
	Timeframes []TimeframeSummary `json:"timeframes"`
}

// latest writes 404 and returns nil when no run has completed yet
func (h *ResultsHandler) latest(w http.ResponseWriter) *pipeline.Report {
	report := h.source.Latest()
	if report == nil {
		respondError(w, http.StatusNotFound, "No completed run yet")
	}
	return report
}

// GetSummary returns the latest run with the top pairs of every timeframe
// GET /api/results
func (h *ResultsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report := h.latest(w)
	if report == nil {
		return
	}

	resp := SummaryResponse{
		RunID:      report.RunID.String(),
		AsOf:       report.AsOf.Format("2006-01-02"),
		StartedAt:  report.StartedAt,
		Duration:   report.Duration.String(),
		Universe:   report.Universe.Assets,
		Failed:     []string{},
		Timeframes: make([]TimeframeSummary, 0, len(report.Timeframes)),
	}
	if report.Acquisition != nil && report.Acquisition.Failed != nil {
		resp.Failed = report.Acquisition.Failed
	}

	for _, tf := range report.Timeframes {
		resp.Timeframes = append(resp.Timeframes, TimeframeSummary{
			Label:   tf.Timeframe.Label,
			Window:  tf.Timeframe.WindowDays,
			Pairs:   len(tf.Ranked),
			Numeric: tf.Numeric,
			Top:     tf.Top,
			Errors:  tf.Errors,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetTimeframe returns one timeframe's full ranking
// GET /api/results/{timeframe}?limit=N&numeric=true
func (h *ResultsHandler) GetTimeframe(w http.ResponseWriter, r *http.Request) {
	report := h.latest(w)
	if report == nil {
		return
	}

	label := mux.Vars(r)["timeframe"]
	tf, ok := report.Timeframe(label)
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown timeframe: "+label)
		return
	}

	results := tf.Ranked
	if r.URL.Query().Get("numeric") == "true" {
		results = ranking.TopN(tf.Ranked, tf.Numeric)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if limit < len(results) {
			results = results[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timeframe": tf.Timeframe,
		"count":     len(results),
		"results":   results,
	})
}

// SymbolError is one symbol the run could not acquire
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// GetErrors returns acquisition failures and per-timeframe tag counts
// GET /api/errors
func (h *ResultsHandler) GetErrors(w http.ResponseWriter, r *http.Request) {
	report := h.latest(w)
	if report == nil {
		return
	}

	symbols := make([]SymbolError, 0)
	if report.Acquisition != nil {
		for symbol, err := range report.Acquisition.Errors {
			symbols = append(symbols, SymbolError{Symbol: symbol, Error: err.Error()})
		}
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Symbol < symbols[j].Symbol })

	byTimeframe := make(map[string][]ranking.TagCount, len(report.Timeframes))
	for _, tf := range report.Timeframes {
		byTimeframe[tf.Timeframe.Label] = tf.Errors
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbols":    symbols,
		"timeframes": byTimeframe,
	})
}

// GetUniverse returns the latest universe including exclusions
// GET /api/universe
func (h *ResultsHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	report := h.latest(w)
	if report == nil {
		return
	}
	respondJSON(w, http.StatusOK, report.Universe)
}
