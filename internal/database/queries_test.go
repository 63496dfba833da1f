package database

import (
	"strings"
	"testing"
)

// Every query that guards a mutation must take a row lock, so the state it
// checked cannot change before the mutation commits.
func TestMutationGuardQueriesLockRows(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"order load before mutation", GetOrderForUpdateSQL, "FOR UPDATE"},
		{"table load before order create", GetTableForUpdateSQL, "FOR UPDATE"},
		{"parent order check before item update", GetOrderItemOrderStatusSQL, "FOR UPDATE OF o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.sql, tt.want) {
				t.Errorf("query does not lock its row: missing %q in %q", tt.want, tt.sql)
			}
		})
	}
}

func TestSnapshotReadQueriesDoNotLock(t *testing.T) {
	for name, sql := range map[string]string{
		"order by id":       GetOrderByIDSQL,
		"orders by status":  GetOrdersByStatusSQL,
		"orders for table":  GetActiveOrdersForTableSQL,
		"audit trail":       GetAuditLogForOrderSQL,
		"available catalog": GetAvailableMenuItemsSQL,
	} {
		if strings.Contains(sql, "FOR UPDATE") {
			t.Errorf("snapshot read %q must not lock rows", name)
		}
	}
}
