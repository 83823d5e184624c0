package export

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/mattn/go-runewidth"
)

// ReportTableLimit is the number of findings listed in the report table
const ReportTableLimit = 20

// GeneratedLayout formats the report generation time
const GeneratedLayout = "2006-01-02 15:04:05Z"

var reportColumns = []string{
	"username",
	"account_type",
	"roles",
	"mfa_enabled",
	"last_login",
	"active",
	"risk_level",
	"issues",
}

const reportTemplate = `# Access Control Audit Report

Generated: {{.Generated}}

Total accounts reviewed: {{.Summary.TotalAccounts}}

## Risk Overview

{{range .Summary.ByRisk}}- **{{.Level}}**: {{.Count}}
{{end}}
## High-Risk Findings (samples)

{{range .Summary.HighRiskExamples}}- {{.Username}}: {{.Issues}}
{{else}}- None
{{end}}
## Full Findings Table (Top {{.Limit}})

{{table .Rows}}`

type reportData struct {
	Generated string
	Summary   domain.Summary
	Limit     int
	Rows      [][]string
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"table": markdownTable,
}).Parse(reportTemplate))

// WriteReport renders the narrative Markdown report
func WriteReport(w io.Writer, findings []domain.Finding, summary domain.Summary, generated time.Time) error {
	head := findings
	if len(head) > ReportTableLimit {
		head = head[:ReportTableLimit]
	}

	rows := make([][]string, 0, len(head))
	for _, f := range head {
		rows = append(rows, []string{
			f.Account.Username,
			f.Account.AccountType,
			strings.Join(f.Account.Roles, domain.RoleSeparator),
			FormatBool(f.Account.MFAEnabled),
			f.Account.LastLogin,
			FormatBool(f.Account.Active),
			f.Risk.String(),
			f.IssueText(),
		})
	}

	data := reportData{
		Generated: generated.UTC().Format(GeneratedLayout),
		Summary:   summary,
		Limit:     ReportTableLimit,
		Rows:      rows,
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// markdownTable renders a padded pipe table. Pipes inside cells are escaped.
func markdownTable(rows [][]string) string {
	widths := make([]int, len(reportColumns))
	for i, h := range reportColumns {
		widths[i] = runewidth.StringWidth(h)
	}

	escaped := make([][]string, len(rows))
	for r, row := range rows {
		escaped[r] = make([]string, len(row))
		for i, cell := range row {
			cell = strings.ReplaceAll(cell, "|", `\|`)
			escaped[r][i] = cell
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(reportColumns)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(":")
		sb.WriteString(strings.Repeat("-", w+1))
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	for _, row := range escaped {
		writeRow(row)
	}
	return sb.String()
}
