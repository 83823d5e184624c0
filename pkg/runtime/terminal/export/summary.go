package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/de-tools/iam-audit/pkg/adapters"
	"github.com/de-tools/iam-audit/pkg/models/domain"
)

// WriteSummaryJSON writes the summary document with two-space indentation
func WriteSummaryJSON(w io.Writer, summary domain.Summary) error {
	data, err := json.MarshalIndent(adapters.MapSummaryDomainToApi(summary), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
