package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"golang.org/x/text/unicode/norm"
)

// Column names of the account snapshot
const (
	ColumnUsername    = "username"
	ColumnEmail       = "email"
	ColumnAccountType = "account_type"
	ColumnRoles       = "roles"
	ColumnMFAEnabled  = "mfa_enabled"
	ColumnLastLogin   = "last_login"
	ColumnActive      = "active"
)

// ParseCSV reads an account snapshot. Rows with a mismatched column count are
// padded or truncated and reported as warnings; no row is ever dropped.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySource
	}

	decoded, err := DetectAndDecode(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		name := normalizeHeader(h)
		if _, dup := index[name]; !dup && name != "" {
			index[name] = i
		}
	}
	if len(index) == 0 {
		return nil, ErrNoHeader
	}

	result := &ParseResult{Records: []domain.AccountRecord{}}
	headerCount := len(headers)
	rowNum := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			return nil, fmt.Errorf("malformed row %d: %w", rowNum, err)
		}

		if len(row) < headerCount {
			result.Warnings = append(result.Warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), headerCount),
			})
			padded := make([]string, headerCount)
			copy(padded, row)
			row = padded
		} else if len(row) > headerCount {
			result.Warnings = append(result.Warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), headerCount),
			})
			row = row[:headerCount]
		}

		record, warnings := toAccountRecord(rowNum, row, index)
		result.Records = append(result.Records, record)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(h)))
}

func toAccountRecord(rowNum int, row []string, index map[string]int) (domain.AccountRecord, []ParseWarning) {
	field := func(name string) string {
		if i, ok := index[name]; ok {
			return row[i]
		}
		return ""
	}

	var warnings []ParseWarning
	flag := func(name string, def bool) bool {
		raw := field(name)
		v, ok := parseBool(raw, def)
		if !ok {
			warnings = append(warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("unrecognized %s value %q; using %t", name, raw, def),
			})
		}
		return v
	}

	accountType := strings.TrimSpace(field(ColumnAccountType))
	if accountType == "" {
		accountType = domain.AccountTypeUser
	}

	record := domain.AccountRecord{
		Username:    field(ColumnUsername),
		Email:       field(ColumnEmail),
		AccountType: accountType,
		Roles:       domain.ParseRoles(field(ColumnRoles)),
		MFAEnabled:  flag(ColumnMFAEnabled, false),
		LastLogin:   field(ColumnLastLogin),
		Active:      flag(ColumnActive, true),
	}
	return record, warnings
}

// parseBool reads a boolean cell. Empty cells take the default; ok is false
// when the value is not recognized and the default was used instead.
func parseBool(raw string, def bool) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return def, true
	case "true", "t", "1", "yes", "y":
		return true, true
	case "false", "f", "0", "no", "n":
		return false, true
	default:
		return def, false
	}
}
