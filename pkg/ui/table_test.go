package ui

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Letter A", 24, "Letter A"},
		{"a very long upload name here", 10, "a very ..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
		{"ünïcödé name", 6, "ünï..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "Name", Width: 6},
		{Header: "URI", MaxWidth: 12},
	})
	table.AddRow([]string{"Letter A", "ipfs://bafyverylongcid/metadata.json"})
	table.AddRow([]string{"C"})

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "ipfs://ba...") {
		t.Errorf("expected truncated URI in output:\n%s", out)
	}
	if strings.Contains(out, "metadata.json") {
		t.Errorf("URI column should be capped at 12 cells:\n%s", out)
	}
}

func TestTableRender_NoColumns(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestPadString(t *testing.T) {
	tests := []struct {
		align string
		want  string
	}{
		{"left", "ab  "},
		{"", "ab  "},
		{"right", "  ab"},
		{"center", " ab "},
	}
	for _, tt := range tests {
		if got := padString("ab", 4, tt.align); got != tt.want {
			t.Errorf("padString(%q) = %q, want %q", tt.align, got, tt.want)
		}
	}
}
