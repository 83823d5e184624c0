package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/de-tools/iam-audit/pkg/adapters"
	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/de-tools/iam-audit/pkg/runtime/terminal/export"
	"github.com/de-tools/iam-audit/pkg/services/audit"
	"github.com/de-tools/iam-audit/pkg/services/config"
	"github.com/de-tools/iam-audit/pkg/store/duckdb"
	"github.com/de-tools/iam-audit/pkg/store/duckdb/findings"
	"github.com/de-tools/iam-audit/pkg/store/records"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Console prints the run summary and the optional report preview
type Console interface {
	Handle(res audit.Result, artifacts []export.Artifact) error
	Preview(markdown []byte) error
}

// FindingsStoreFactory opens the findings export at path
type FindingsStoreFactory func(path string) (findings.Store, io.Closer, error)

// OpenDuckDBFindingsStore opens a DuckDB findings export
func OpenDuckDBFindingsStore(path string) (findings.Store, io.Closer, error) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: path})
	if err != nil {
		return nil, nil, err
	}
	s, err := findings.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db, nil
}

type RunCmd struct {
	policy     PolicyFlags
	input      string
	outputDir  string
	workers    int
	duckdbPath string
	preview    bool

	sources   records.Registry
	console   Console
	openStore FindingsStoreFactory
	clock     func() time.Time
}

func NewRunCmd(sources records.Registry, console Console, openStore FindingsStoreFactory, clock func() time.Time) *cobra.Command {
	if openStore == nil {
		openStore = OpenDuckDBFindingsStore
	}
	if clock == nil {
		clock = time.Now
	}

	rc := &RunCmd{
		sources:   sources,
		console:   console,
		openStore: openStore,
		clock:     clock,
	}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Audit an account snapshot and write findings, summary and report",
		RunE:  rc.run,
	}

	rc.policy.register(cmd)
	cmd.Flags().StringVarP(&rc.input, "input", "i", "", "Account snapshot location: a CSV path or s3://bucket/key")
	cmd.Flags().StringVarP(&rc.outputDir, "output-dir", "o", "", "Directory for findings.csv, summary.json and report.md")
	cmd.Flags().IntVar(&rc.workers, "workers", 0, "Number of accounts evaluated concurrently")
	cmd.Flags().StringVar(&rc.duckdbPath, "duckdb", "", "Also export findings to this DuckDB database")
	cmd.Flags().BoolVar(&rc.preview, "preview", false, "Render the report to the terminal after writing it")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	runID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	settings, err := config.LoadSettings(rc.policy.ConfigPath)
	if err != nil {
		return err
	}
	rc.applyOverrides(cmd, settings)

	policy, err := rc.policy.Resolve(ctx, cmd, settings)
	if err != nil {
		return err
	}

	src, err := rc.sources.Open(ctx, settings.Input)
	if err != nil {
		return fmt.Errorf("failed to open account source: %w", err)
	}
	parsed, err := src.Load(ctx)
	if err != nil {
		return err
	}
	for _, w := range parsed.Warnings {
		logger.Warn().Int("row", w.Row).Msg(w.Message)
	}

	evaluator, err := audit.NewEvaluator(policy, audit.WithClock(rc.clock))
	if err != nil {
		return err
	}
	res, err := evaluator.Run(ctx, parsed.Records, settings.Workers)
	if err != nil {
		return err
	}

	if settings.Export.DuckDBPath != "" {
		if err := rc.export(ctx, settings.Export.DuckDBPath, runID, evaluator.Today(), res.Findings); err != nil {
			return err
		}
	}

	artifacts, err := export.NewReporter(settings.OutputDir, rc.clock).Handle(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}

	if err := rc.console.Handle(res, artifacts); err != nil {
		return err
	}
	if rc.preview {
		for _, a := range artifacts {
			if a.Name == export.ReportFile {
				return rc.console.Preview(a.Content)
			}
		}
	}
	return nil
}

func (rc *RunCmd) applyOverrides(cmd *cobra.Command, settings *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		settings.Input = rc.input
	}
	if flags.Changed("output-dir") {
		settings.OutputDir = rc.outputDir
	}
	if flags.Changed("workers") {
		settings.Workers = rc.workers
	}
	if flags.Changed("duckdb") {
		settings.Export.DuckDBPath = rc.duckdbPath
	}
}

func (rc *RunCmd) export(ctx context.Context, path, runID string, auditDate time.Time, found []domain.Finding) error {
	store, closer, err := rc.openStore(path)
	if err != nil {
		return fmt.Errorf("failed to open findings export: %w", err)
	}
	defer closer.Close()

	if err := store.Replace(ctx, adapters.MapFindingsDomainToStore(runID, auditDate, found)); err != nil {
		return fmt.Errorf("failed to export findings: %w", err)
	}
	return nil
}
