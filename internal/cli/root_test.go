package cli

import (
	"reflect"
	"testing"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.0.0", "abc123", "2026-01-01")

	if cmd.Use != "mlforge" {
		t.Errorf("Use = %q, want mlforge", cmd.Use)
	}

	wantSubs := []string{
		"dashboard", "load", "shape", "head", "tail", "describe", "info",
		"missing", "columns", "preprocess", "model", "project", "generate",
		"watch", "config", "version",
	}
	have := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range wantSubs {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"age", []string{"age"}},
		{"age,income", []string{"age", "income"}},
		{" age , income ,", []string{"age", "income"}},
	}

	for _, tt := range tests {
		if got := splitColumns(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitColumns(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSamples(t *testing.T) {
	rows, err := parseSamples([]string{"1,2.5,3", "4, 5, 6"}, 3)
	if err != nil {
		t.Fatalf("parseSamples: %v", err)
	}
	want := [][]float64{{1, 2.5, 3}, {4, 5, 6}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}

	if _, err := parseSamples([]string{"1,2"}, 3); err == nil {
		t.Error("expected width mismatch error")
	}
	if _, err := parseSamples([]string{"1,x,3"}, 3); err == nil {
		t.Error("expected parse error for non-numeric value")
	}
}
