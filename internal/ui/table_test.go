package ui

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var b strings.Builder
	tbl := NewTable(&b, "PACKAGE", "OLD", "NEW")
	tbl.Row("requests", "2.30.0", "2.31.0")
	tbl.Row("urllib3", "-", "2.0.0")
	if err := tbl.Flush(); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "PACKAGE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "requests") || !strings.Contains(lines[1], "2.31.0") {
		t.Errorf("row = %q", lines[1])
	}
}
