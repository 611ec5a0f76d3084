package cmd

import (
	"testing"

	"github.com/listd/listd/internal/models"
)

func TestResolveListIn(t *testing.T) {
	lists := []models.List{
		{ID: "aaa111", Title: "Groceries"},
		{ID: "aab222", Title: "Work"},
		{ID: "ccc333", Title: "Reading"},
	}

	tests := []struct {
		name      string
		ref       string
		defaultID string
		want      string
		wantErr   bool
	}{
		{"exact id", "aab222", "", "aab222", false},
		{"unique prefix", "ccc", "", "ccc333", false},
		{"exact title case-insensitive", "groceries", "", "aaa111", false},
		{"empty ref uses default", "", "ccc333", "ccc333", false},
		{"empty ref no default", "", "", "", true},
		{"ambiguous prefix", "aa", "", "", true},
		{"no match", "zzz", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveListIn(lists, tt.ref, tt.defaultID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
