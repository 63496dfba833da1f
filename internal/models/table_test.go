package models

import (
	"reflect"
	"testing"
)

func TestTableCodeCandidates(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "raw digit",
			code: "4",
			want: []string{"4", "04", "t-4", "t-04"},
		},
		{
			name: "zero padded",
			code: "04",
			want: []string{"04", "t-04"},
		},
		{
			name: "prefixed",
			code: "T-04",
			want: []string{"t-04", "04"},
		},
		{
			name: "lowercase prefixed",
			code: "t-4",
			want: []string{"t-4", "4", "04", "t-04"},
		},
		{
			name: "empty",
			code: "  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TableCodeCandidates(tt.code)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TableCodeCandidates(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestTableCodeCandidatesAllFormsShareMember(t *testing.T) {
	// "4", "04" and "T-04" must all be able to resolve a table stored as "T-04".
	for _, code := range []string{"4", "04", "T-04"} {
		found := false
		for _, c := range TableCodeCandidates(code) {
			if c == "t-04" {
				found = true
			}
		}
		if !found {
			t.Errorf("TableCodeCandidates(%q) does not include t-04", code)
		}
	}
}

func TestNormalizeTableCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"4", "T-04"},
		{"04", "T-04"},
		{"T-04", "T-04"},
		{"T-4", "T-04"},
		{"t-4", "T-04"},
		{"t-12", "T-12"},
		{"12", "T-12"},
	}

	// Every fuzzy form of one table must collapse to a single canonical code.
	for _, code := range []string{"4", "04", "T-4", "T-04", "t-4", "t-04"} {
		if got := NormalizeTableCode(code); got != "T-04" {
			t.Errorf("NormalizeTableCode(%q) = %q, want T-04", code, got)
		}
	}

	for _, tt := range tests {
		if got := NormalizeTableCode(tt.code); got != tt.want {
			t.Errorf("NormalizeTableCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestTableStatusValid(t *testing.T) {
	for _, s := range []TableStatus{TableVacant, TableActive, TableReady, TableDirty} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if TableStatus("OCCUPIED").Valid() {
		t.Error("OCCUPIED must not be a valid table status")
	}
}
