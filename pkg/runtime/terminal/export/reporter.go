package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/iam-audit/pkg/services/audit"
	"github.com/rs/zerolog"
)

// Artifact file names written to the output directory
const (
	FindingsFile = "findings.csv"
	SummaryFile  = "summary.json"
	ReportFile   = "report.md"
)

// Artifact is a rendered output file
type Artifact struct {
	Name    string
	Path    string
	Content []byte
}

// Reporter renders audit results and writes them to an output directory
type Reporter struct {
	outputDir string
	now       func() time.Time
}

// NewReporter creates a reporter writing into outputDir. A nil clock uses time.Now.
func NewReporter(outputDir string, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{outputDir: outputDir, now: now}
}

// Render produces the findings table, summary document and report in memory
func (r *Reporter) Render(res audit.Result) ([]Artifact, error) {
	var findings, summary, report bytes.Buffer

	if err := WriteFindingsCSV(&findings, res.Findings); err != nil {
		return nil, err
	}
	if err := WriteSummaryJSON(&summary, res.Summary); err != nil {
		return nil, err
	}
	if err := WriteReport(&report, res.Findings, res.Summary, r.now()); err != nil {
		return nil, err
	}

	return []Artifact{
		{Name: FindingsFile, Path: filepath.Join(r.outputDir, FindingsFile), Content: findings.Bytes()},
		{Name: SummaryFile, Path: filepath.Join(r.outputDir, SummaryFile), Content: summary.Bytes()},
		{Name: ReportFile, Path: filepath.Join(r.outputDir, ReportFile), Content: report.Bytes()},
	}, nil
}

// Handle renders every artifact and then writes them. Nothing is written
// unless all artifacts render and stage successfully.
func (r *Reporter) Handle(ctx context.Context, res audit.Result) ([]Artifact, error) {
	artifacts, err := r.Render(res)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	staged := make([]string, 0, len(artifacts))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, a := range artifacts {
		tmp, err := stage(r.outputDir, a)
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, tmp)
	}

	for i, a := range artifacts {
		if err := os.Rename(staged[i], a.Path); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to write %s: %w", a.Path, err)
		}
	}

	logger := zerolog.Ctx(ctx)
	for _, a := range artifacts {
		logger.Info().Str("path", a.Path).Int("bytes", len(a.Content)).Msg("artifact written")
	}
	return artifacts, nil
}

func stage(dir string, a Artifact) (string, error) {
	f, err := os.CreateTemp(dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", a.Name, err)
	}
	if _, err := f.Write(a.Content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage %s: %w", a.Name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage %s: %w", a.Name, err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage %s: %w", a.Name, err)
	}
	return f.Name(), nil
}
