package models

import (
	"strings"
	"time"
)

// TableStatus represents the occupancy state of a physical table. It is
// driven by order lifecycle side effects except for the explicit reset
// back to VACANT.
type TableStatus string

const (
	TableVacant TableStatus = "VACANT"
	TableActive TableStatus = "ACTIVE"
	TableReady  TableStatus = "READY"
	TableDirty  TableStatus = "DIRTY"
)

// Valid reports whether s is a known table status
func (s TableStatus) Valid() bool {
	switch s {
	case TableVacant, TableActive, TableReady, TableDirty:
		return true
	}
	return false
}

// Table is a physical seating unit
type Table struct {
	ID        string      `json:"id"`
	TableCode string      `json:"table_code"`
	Capacity  int         `json:"capacity"`
	Status    TableStatus `json:"status"`
	DeletedAt *time.Time  `json:"-"`
}

// CreateTableRequest is the body of POST /tables
type CreateTableRequest struct {
	TableCode string `json:"table_code"`
	Capacity  int    `json:"capacity"`
}

// TableCodeCandidates expands a guest-entered code into the lowercased forms
// it may be stored as: "4" matches "4", "04", "T-4" and "T-04".
func TableCodeCandidates(code string) []string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	raw := strings.ToLower(code)
	bare := strings.TrimPrefix(raw, "t-")
	padded := bare
	if len(padded) == 1 {
		padded = "0" + padded
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, c := range []string{raw, bare, padded, "t-" + bare, "t-" + padded} {
		if !seen[c] {
			seen[c] = true
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// NormalizeTableCode returns the canonical stored form of a table code.
// "4", "04", "T-4" and "t-04" all become "T-04", so provisioning cannot
// create two spellings of the same table.
func NormalizeTableCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	bare := strings.TrimPrefix(code, "T-")
	if len(bare) == 1 {
		bare = "0" + bare
	}
	return "T-" + bare
}
