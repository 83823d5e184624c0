package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/iam-audit/pkg/models/domain"
)

// FindingsColumns is the header of the findings table
var FindingsColumns = []string{
	"username",
	"email",
	"account_type",
	"roles",
	"mfa_enabled",
	"last_login",
	"active",
	"issues",
	"risk_level",
}

// FormatBool renders booleans the same way in every artifact
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FindingRow returns the table cells of a finding in FindingsColumns order
func FindingRow(f domain.Finding) []string {
	return []string{
		f.Account.Username,
		f.Account.Email,
		f.Account.AccountType,
		strings.Join(f.Account.Roles, domain.RoleSeparator),
		FormatBool(f.Account.MFAEnabled),
		f.Account.LastLogin,
		FormatBool(f.Account.Active),
		f.IssueText(),
		f.Risk.String(),
	}
}

// WriteFindingsCSV writes one row per finding under the FindingsColumns header
func WriteFindingsCSV(w io.Writer, findings []domain.Finding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FindingsColumns); err != nil {
		return fmt.Errorf("failed to write findings header: %w", err)
	}
	for _, f := range findings {
		if err := cw.Write(FindingRow(f)); err != nil {
			return fmt.Errorf("failed to write finding for %s: %w", f.Account.Username, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
