package audit

import (
	"context"
	"fmt"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// EvaluateAll evaluates every record and returns findings in input order.
// With workers > 1 records are evaluated concurrently.
func (e *Evaluator) EvaluateAll(ctx context.Context, records []domain.AccountRecord, workers int) ([]domain.Finding, error) {
	if workers < 1 {
		workers = 1
	}

	findings := make([]domain.Finding, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, record := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			findings[i] = e.Evaluate(record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to evaluate accounts: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Int("records", len(records)).
		Int("workers", workers).
		Msg("accounts evaluated")

	return findings, nil
}

// Result is the outcome of an audit run
type Result struct {
	Findings []domain.Finding
	Summary  domain.Summary
}

// Run evaluates records and aggregates the findings
func (e *Evaluator) Run(ctx context.Context, records []domain.AccountRecord, workers int) (Result, error) {
	findings, err := e.EvaluateAll(ctx, records, workers)
	if err != nil {
		return Result{}, err
	}

	summary := Summarize(findings)

	event := zerolog.Ctx(ctx).Info().Int("total_accounts", summary.TotalAccounts)
	for _, rc := range summary.ByRisk {
		event = event.Int(rc.Level.String(), rc.Count)
	}
	event.Msg("audit complete")

	return Result{Findings: findings, Summary: summary}, nil
}
