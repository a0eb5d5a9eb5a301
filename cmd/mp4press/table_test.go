package main

import (
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
)

func TestRenderTableColoursStatusColumnOnlyWhenAsked(t *testing.T) {
	columns := []column{leftColumn("Check"), statusColumn("Status"), leftColumn("Detail")}
	rows := [][]string{
		{"FFmpeg", checkStatus(false, false), "binary not found"},
		{"Encoder aac", checkStatus(false, true)},
		{"FFprobe", checkStatus(true, false), "/usr/bin/ffprobe", "extra"},
	}

	plain := renderTable(columns, rows, false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("expected no escape codes in plain table:\n%s", plain)
	}
	for _, want := range []string{"FAIL", "WARN", "OK", "/usr/bin/ffprobe"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("expected %q in table:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "extra") {
		t.Fatalf("expected cells beyond the header count to be dropped:\n%s", plain)
	}

	coloured := renderTable(columns, rows, true)
	if text.FgRed.Sprint("x") == "x" {
		// Colours disabled by the environment.
		return
	}
	if !strings.Contains(coloured, "\x1b[") {
		t.Fatalf("expected escape codes in coloured table:\n%s", coloured)
	}
	if strings.Contains(coloured, "\x1b[31mbinary") {
		t.Fatalf("detail column must not be coloured:\n%s", coloured)
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if got := renderTable(nil, [][]string{{"x"}}, false); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
