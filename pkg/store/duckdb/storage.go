package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const FindingsTableSchema = `
	CREATE TABLE IF NOT EXISTS access_findings (
		run_id VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		audit_date DATE NOT NULL,
		username VARCHAR,
		email VARCHAR,
		account_type VARCHAR,
		roles VARCHAR,
		mfa_enabled BOOLEAN,
		last_login VARCHAR,
		active BOOLEAN,
		issues VARCHAR,
		risk_level VARCHAR NOT NULL,
		PRIMARY KEY (run_id, position)
	);
`

var bootQueries = []string{
	FindingsTableSchema,
}

type Settings struct {
	DbPath string
}

// NewDB opens a DuckDB database and creates the export tables
func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(settings.DbPath, func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %s: %w", settings.DbPath, err)
	}

	return sql.OpenDB(c), nil
}
