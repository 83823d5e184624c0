package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type RiskCount struct {
	Level string
	Count int
}

// RiskCounts marshals to a JSON object whose keys keep slice order
type RiskCounts []RiskCount

func (rc RiskCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range rc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Level)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type HighRiskExample struct {
	Username string `json:"username"`
	Issues   string `json:"issues"`
}

type AuditSummary struct {
	TotalAccounts    int               `json:"total_accounts"`
	ByRisk           RiskCounts        `json:"by_risk"`
	HighRiskExamples []HighRiskExample `json:"high_risk_examples"`
}
