package findings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/iam-audit/pkg/models/store"
	"github.com/rs/zerolog"
)

// Store exports audit findings into the access_findings table
type Store interface {
	// Replace removes every previously exported finding and inserts records in one transaction
	Replace(ctx context.Context, records []store.FindingRecord) error
	Count(ctx context.Context) (int, error)
}

type findingsStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &findingsStore{db: db}, nil
}

const insertFinding = `
		INSERT INTO access_findings (
			run_id, position, audit_date, username, email, account_type,
			roles, mfa_enabled, last_login, active, issues, risk_level
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)`

func (s *findingsStore) Replace(ctx context.Context, records []store.FindingRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM access_findings`); err != nil {
		return fmt.Errorf("clear findings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertFinding)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err = stmt.ExecContext(ctx,
			r.RunID,
			r.Position,
			r.AuditDate,
			r.Username,
			r.Email,
			r.AccountType,
			r.Roles,
			r.MFAEnabled,
			r.LastLogin,
			r.Active,
			r.Issues,
			r.RiskLevel,
		)
		if err != nil {
			return fmt.Errorf("insert finding %d: %w", r.Position, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit findings: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("table", "access_findings").
		Int("rows", len(records)).
		Msg("findings exported")
	return nil
}

func (s *findingsStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_findings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count findings: %w", err)
	}
	return n, nil
}
