package findings

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/iam-audit/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditDate = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func sampleRecords() []store.FindingRecord {
	return []store.FindingRecord{
		{
			RunID: "run-1", Position: 0, AuditDate: auditDate,
			Username: "alice", Email: "alice@example.com", AccountType: "User",
			Roles: "GlobalAdmin;BillingAdmin", MFAEnabled: true, LastLogin: "2025-06-01", Active: true,
			Issues: "SoD conflict: GlobalAdmin + BillingAdmin", RiskLevel: "High",
		},
		{
			RunID: "run-1", Position: 1, AuditDate: auditDate,
			Username: "bob", Email: "bob@example.com", AccountType: "User",
			MFAEnabled: true, LastLogin: "2025-06-29", Active: true,
			RiskLevel: "Compliant",
		},
	}
}

func TestFindingsStore_Replace(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	records := sampleRecords()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM access_findings`)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO access_findings`))
	for _, r := range records {
		prep.ExpectExec().
			WithArgs(r.RunID, r.Position, r.AuditDate, r.Username, r.Email, r.AccountType,
				r.Roles, r.MFAEnabled, r.LastLogin, r.Active, r.Issues, r.RiskLevel).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	err = s.Replace(context.Background(), records)

	// Then
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindingsStore_ReplaceRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM access_findings`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO access_findings`)).
		ExpectExec().
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	s, err := NewStore(db)
	require.NoError(t, err)

	err = s.Replace(context.Background(), sampleRecords())

	assert.ErrorContains(t, err, "constraint violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindingsStore_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM access_findings`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	s, err := NewStore(db)
	require.NoError(t, err)

	n, err := s.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)

	assert.Error(t, err)
}
