package store

import "time"

// FindingRecord is one row of the access_findings export table
type FindingRecord struct {
	RunID       string
	Position    int
	AuditDate   time.Time
	Username    string
	Email       string
	AccountType string
	Roles       string
	MFAEnabled  bool
	LastLogin   string
	Active      bool
	Issues      string
	RiskLevel   string
}
