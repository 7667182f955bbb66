// Package pipeline drives the batch flow over a configuration document:
// default inference, static and dynamic validation, then artifact
// generation per table. One bad table never aborts its siblings; every
// table gets an outcome in the run report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dbops/repart"
	"github.com/dbops/repart/catalog"
	"github.com/dbops/repart/ddl"
	"github.com/dbops/repart/plan"
	"github.com/dbops/repart/store"
	"github.com/dbops/repart/validate"
	"github.com/google/uuid"
)

// Config holds the configuration for creating a Runner.
type Config struct {
	// Catalog provides live metadata for dynamic validation. When nil,
	// dynamic validation is skipped and only static checks run.
	Catalog catalog.Catalog

	// Store persists the run report when set. A save failure is logged
	// and never fails the run.
	Store store.RunStore

	// OutputDir is where generated artifacts are written, one directory
	// per table. When empty, artifacts are generated but not written.
	OutputDir string

	// Concurrency bounds the number of tables processed in parallel.
	// Defaults to 4.
	Concurrency int

	// Logger for structured run logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Runner executes the validation and generation pipeline for a document.
type Runner struct {
	catalog     catalog.Catalog
	store       store.RunStore
	outputDir   string
	concurrency int
	logger      *slog.Logger
}

// New creates a Runner from the given configuration.
func New(cfg Config) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		catalog:     cfg.Catalog,
		store:       cfg.Store,
		outputDir:   cfg.OutputDir,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}
}

// Run processes every table in the document and returns the run report.
// The returned error is reserved for document-level failures; per-table
// failures are reported through the outcomes.
func (r *Runner) Run(ctx context.Context, doc *repart.Document) (repart.RunReport, error) {
	if doc == nil {
		return repart.RunReport{}, errors.New("document is nil")
	}

	report := repart.RunReport{
		ID:        uuid.New().String(),
		Schema:    doc.Metadata.Schema,
		StartedAt: time.Now(),
		Outcomes:  make([]repart.TableOutcome, len(doc.Tables)),
	}
	r.logger.Info("run started",
		"run_id", report.ID,
		"schema", report.Schema,
		"tables", len(doc.Tables))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.concurrency)
	for i, table := range doc.Tables {
		wg.Add(1)
		go func(i int, table repart.TableConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report.Outcomes[i] = r.processTable(ctx, table)
		}(i, table)
	}
	wg.Wait()

	report.FinishedAt = time.Now()
	r.logger.Info("run finished",
		"run_id", report.ID,
		"status", report.Status(),
		"duration", report.FinishedAt.Sub(report.StartedAt))

	if r.store != nil {
		if err := r.store.SaveRun(ctx, report); err != nil {
			r.logger.Warn("failed to persist run report", "run_id", report.ID, "error", err)
		}
	}

	return report, nil
}

// processTable runs one table through defaults, validation and
// generation, and reduces the findings to a single outcome.
func (r *Runner) processTable(ctx context.Context, cfg repart.TableConfig) repart.TableOutcome {
	outcome := repart.TableOutcome{
		Owner:     cfg.Owner,
		TableName: cfg.TableName,
	}

	if !cfg.Enabled {
		outcome.Status = repart.StatusInfo
		outcome.Results = []repart.ValidationResult{{
			Status:   repart.StatusInfo,
			Message:  "table is disabled; skipped",
			TableRef: cfg.QualifiedName(),
		}}
		r.logger.Debug("table skipped", "table", cfg.QualifiedName())
		return outcome
	}

	plan.ApplyDefaults(&cfg)

	outcome.Results = validate.Static(cfg)
	if !validate.Passed(outcome.Results) {
		outcome.Status = repart.StatusFailed
		r.logger.Warn("static validation failed", "table", cfg.QualifiedName())
		return outcome
	}

	if r.catalog != nil {
		outcome.Results = append(outcome.Results, validate.Dynamic(ctx, cfg, r.catalog)...)
		if !validate.Passed(outcome.Results) {
			outcome.Status = repart.StatusFailed
			r.logger.Warn("dynamic validation failed", "table", cfg.QualifiedName())
			return outcome
		}
	}

	set, err := ddl.Compile(cfg)
	if err != nil {
		outcome.Status = repart.StatusError
		outcome.Err = err.Error()
		r.logger.Error("artifact generation failed", "table", cfg.QualifiedName(), "error", err)
		return outcome
	}

	if r.outputDir != "" {
		if err := r.writeArtifacts(set); err != nil {
			outcome.Status = repart.StatusError
			outcome.Err = err.Error()
			r.logger.Error("artifact write failed", "table", cfg.QualifiedName(), "error", err)
			return outcome
		}
	}

	outcome.Status = repart.StatusPassed
	for _, res := range outcome.Results {
		if res.Status == repart.StatusWarning {
			outcome.Status = repart.StatusWarning
			break
		}
	}
	r.logger.Info("artifacts generated",
		"table", cfg.QualifiedName(),
		"artifacts", len(set.Artifacts),
		"status", outcome.Status)
	return outcome
}

// writeArtifacts writes one directory per table containing the phase
// artifacts and the orchestrator, each as a .sql file.
func (r *Runner) writeArtifacts(set repart.ArtifactSet) error {
	dir := filepath.Join(r.outputDir, fmt.Sprintf("%s.%s", set.Owner, set.TableName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	artifacts := append([]repart.Artifact{set.Orchestrator}, set.Artifacts...)
	for _, a := range artifacts {
		path := filepath.Join(dir, a.Name+".sql")
		if err := os.WriteFile(path, []byte(a.Body), 0o600); err != nil {
			return fmt.Errorf("failed to write artifact %s: %w", a.Name, err)
		}
	}

	return nil
}
