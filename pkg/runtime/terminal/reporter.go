package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/de-tools/iam-audit/pkg/runtime/terminal/export"
	"github.com/de-tools/iam-audit/pkg/services/audit"
)

// Reporter outputs a short run summary to the console
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

var consoleTmpl = template.Must(template.New("console").Parse(
	`Accounts reviewed: {{.Result.Summary.TotalAccounts}}
{{range .Result.Summary.ByRisk}}  {{printf "%-10s" .Level.String}} {{.Count}}
{{end}}{{range .Artifacts}}Wrote {{.Path}}
{{end}}`))

func (c *Reporter) Handle(res audit.Result, artifacts []export.Artifact) error {
	data := struct {
		Result    audit.Result
		Artifacts []export.Artifact
	}{Result: res, Artifacts: artifacts}

	if err := consoleTmpl.Execute(c.writer, data); err != nil {
		return fmt.Errorf("failed to render console summary: %w", err)
	}
	return nil
}

// Preview renders the Markdown report for terminal display, falling back to raw Markdown
func (c *Reporter) Preview(markdown []byte) error {
	out := string(markdown)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err == nil {
		if rendered, err := renderer.Render(out); err == nil {
			out = rendered
		}
	}

	_, err = io.WriteString(c.writer, out)
	return err
}
