// Package engine orchestrates one full analytics run: parse and merge the
// maintenance exports, update the flight-hours history, classify fleet
// positions, and emit the output documents.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rotorops/fleetmx/internal/basestate"
	"github.com/rotorops/fleetmx/internal/duelist"
	"github.com/rotorops/fleetmx/internal/flighthours"
	"github.com/rotorops/fleetmx/internal/snapshot"
	"github.com/rotorops/fleetmx/internal/telemetry"
	"github.com/rotorops/fleetmx/pkg/config"
	"go.uber.org/zap"
)

// Engine runs the maintenance and fleet-state pipeline. A run is strictly
// sequential: normalize, classify/merge, update history, classify
// positions, emit. Concurrent runs are not supported; scheduling is the
// caller's responsibility.
type Engine struct {
	cfg        *config.Config
	parser     *duelist.Parser
	classifier *basestate.Classifier
	provider   telemetry.Provider
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// RunResult summarizes one run for operator-facing logging.
type RunResult struct {
	RunID          string
	ReportDate     time.Time
	AircraftParsed int
	RowsTotal      int
	RowsSkipped    int
	ComponentTails int
	HistoryWritten int
	HistoryPruned  int
	TelemetryHits  int
	TelemetryFleet int
	LiveData       bool
}

// New builds an engine from configuration. provider may be nil when
// telemetry is disabled; position output then always follows the
// snapshot-preservation path.
func New(cfg *config.Config, provider telemetry.Provider, logger *zap.SugaredLogger) (*Engine, error) {
	buckets := make([]duelist.BucketPatterns, len(cfg.Intervals))
	for i, iv := range cfg.Intervals {
		buckets[i] = duelist.BucketPatterns{Hours: iv.Hours, Patterns: iv.Patterns}
	}

	parser, err := duelist.NewParser(buckets, cfg.RetirementKeywords, cfg.ComponentWindowHours, cfg.ComponentWindowDays, logger)
	if err != nil {
		return nil, fmt.Errorf("building due-list parser: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		parser:     parser,
		classifier: basestate.NewClassifier(cfg.Bases, cfg.Position),
		provider:   provider,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Run executes one full pipeline pass. A structural failure in the daily
// export aborts the run before any output is written, leaving every prior
// document untouched. Everything downstream degrades instead of failing.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	now := e.now()
	result := &RunResult{RunID: uuid.NewString()}

	dailyPath := filepath.Join(e.cfg.DataDir, e.cfg.DailyExport)
	weeklyPath := filepath.Join(e.cfg.DataDir, e.cfg.WeeklyExport)

	e.checkExportAge(dailyPath, now)

	daily, err := e.parser.ParseFile(dailyPath)
	if err != nil {
		return nil, fmt.Errorf("daily export: %w", err)
	}

	var weekly *duelist.ParseResult
	if _, statErr := os.Stat(weeklyPath); statErr == nil {
		weekly, err = e.parser.ParseFile(weeklyPath)
		if err != nil {
			return nil, fmt.Errorf("weekly export: %w", err)
		}
	} else {
		e.logger.Warnf("weekly export not found at %s; long-range inspection buckets will show not due this cycle", weeklyPath)
	}

	merged := duelist.Merge(daily, weekly, e.cfg.IntervalHours(), now)
	result.ReportDate = merged.ReportDate
	result.AircraftParsed = len(merged.Aircraft)
	result.RowsTotal = daily.RowsTotal
	result.RowsSkipped = daily.RowsSkipped
	result.ComponentTails = len(merged.Components)

	dueDoc := duelist.BuildDocument(merged, e.cfg.IntervalHours(), now)
	dueDoc.RunID = result.RunID
	if err := snapshot.Save(filepath.Join(e.cfg.DataDir, e.cfg.DueListFile), dueDoc); err != nil {
		return nil, fmt.Errorf("writing due-list document: %w", err)
	}

	if err := e.updateFlightHours(merged, now, result); err != nil {
		return nil, err
	}

	if err := e.classifyPositions(ctx, merged, now, result); err != nil {
		return nil, err
	}

	e.logSummary(result)
	return result, nil
}

// checkExportAge warns when the daily export looks older than a download
// cycle. Stale data is still processed.
func (e *Engine) checkExportAge(path string, now time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if age := now.Sub(info.ModTime()); age > e.cfg.StaleExportAfter {
		e.logger.Warnf("daily export is %.1f hours old; may not be today's data", age.Hours())
	}
}

func (e *Engine) updateFlightHours(merged *duelist.Merged, now time.Time, result *RunResult) error {
	historyPath := filepath.Join(e.cfg.DataDir, e.cfg.HistoryFile)

	history := flighthours.LoadHistory(historyPath)
	result.HistoryWritten = flighthours.Update(history, merged.Aircraft, &merged.ReportDate, now)
	result.HistoryPruned = flighthours.Prune(history, now, e.cfg.RetentionDays)

	if err := flighthours.SaveHistory(historyPath, history); err != nil {
		return fmt.Errorf("writing flight-hours history: %w", err)
	}

	stats := flighthours.Compute(history, merged.Aircraft, now)
	if err := snapshot.Save(filepath.Join(e.cfg.DataDir, e.cfg.StatsFile), stats); err != nil {
		return fmt.Errorf("writing flight-hours stats: %w", err)
	}
	return nil
}

// classifyPositions fetches telemetry and writes the assignments document.
// A fleet-wide outage is not a failure: the prior snapshot is preserved
// with live_data=false and the run continues.
func (e *Engine) classifyPositions(ctx context.Context, merged *duelist.Merged, now time.Time, result *RunResult) error {
	assignmentsPath := filepath.Join(e.cfg.DataDir, e.cfg.AssignmentsFile)
	source := e.cfg.Telemetry.Provider

	fleet, mappingSource := telemetry.LoadFleetMapping(filepath.Join(e.cfg.DataDir, e.cfg.Telemetry.MappingFile))
	e.logger.Debugf("loaded %d aircraft mappings from %s", len(fleet), mappingSource)
	result.TelemetryFleet = len(fleet)

	var records map[string]*telemetry.Record
	if e.provider != nil {
		var err error
		records, err = e.provider.Positions(ctx, fleet)
		if err != nil {
			e.logger.Warnf("telemetry fetch failed: %v", err)
			records = nil
		}
	}

	usable := 0
	for _, rec := range records {
		if rec.HasFix() {
			usable++
		}
	}
	result.TelemetryHits = usable

	if usable == 0 {
		e.logger.Warnf("no live telemetry for the fleet; preserving prior base assignments")
		doc, err := basestate.PreservePrior(assignmentsPath, e.cfg.Bases, result.RunID, source, now)
		if err != nil {
			return fmt.Errorf("preserving prior assignments: %w", err)
		}
		result.LiveData = doc.LiveData
		return nil
	}

	hoursByTail := make(map[string]*float64, len(merged.Aircraft))
	for _, ac := range merged.Aircraft {
		hoursByTail[ac.Tail] = ac.AirframeHours
	}

	assignments := make([]basestate.Assignment, 0, len(fleet))
	for tail := range fleet {
		assignments = append(assignments, e.classifier.Classify(tail, records[tail], hoursByTail[tail]))
	}

	doc := basestate.BuildDocument(e.cfg.Bases, assignments, result.RunID, source, now)
	if err := basestate.SaveDocument(assignmentsPath, doc); err != nil {
		return fmt.Errorf("writing assignments document: %w", err)
	}
	result.LiveData = true
	return nil
}

func (e *Engine) logSummary(r *RunResult) {
	e.logger.Infof("run %s complete: %s aircraft, %s rows (%s skipped), %s history entries written, %s pruned, telemetry %d/%d, live_data=%t",
		r.RunID,
		humanize.Comma(int64(r.AircraftParsed)),
		humanize.Comma(int64(r.RowsTotal)),
		humanize.Comma(int64(r.RowsSkipped)),
		humanize.Comma(int64(r.HistoryWritten)),
		humanize.Comma(int64(r.HistoryPruned)),
		r.TelemetryHits, r.TelemetryFleet,
		r.LiveData)
}
