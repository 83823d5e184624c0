package adapters

import (
	"strings"
	"time"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/de-tools/iam-audit/pkg/models/store"
)

func MapFindingDomainToStore(runID string, auditDate time.Time, position int, f domain.Finding) store.FindingRecord {
	return store.FindingRecord{
		RunID:       runID,
		Position:    position,
		AuditDate:   auditDate,
		Username:    f.Account.Username,
		Email:       f.Account.Email,
		AccountType: f.Account.AccountType,
		Roles:       strings.Join(f.Account.Roles, domain.RoleSeparator),
		MFAEnabled:  f.Account.MFAEnabled,
		LastLogin:   f.Account.LastLogin,
		Active:      f.Account.Active,
		Issues:      f.IssueText(),
		RiskLevel:   f.Risk.String(),
	}
}

func MapFindingsDomainToStore(runID string, auditDate time.Time, findings []domain.Finding) []store.FindingRecord {
	res := make([]store.FindingRecord, 0, len(findings))
	for i, f := range findings {
		res = append(res, MapFindingDomainToStore(runID, auditDate, i, f))
	}
	return res
}
