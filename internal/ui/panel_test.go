package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "░░░░░░░░░░   0%"},
		{1, 2, 10, "█████░░░░░  50%"},
		{3, 3, 5, "█████ 100%"},
		{1, 4, 2, "█░░░░  25%"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d, %d, %d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestFprintPanelAligns(t *testing.T) {
	SetTheme("classic")
	var buf bytes.Buffer
	FprintPanel(&buf, []string{"☑ done", "\033[32mok\033[0m", ""})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	want := visibleWidth(lines[0])
	for i, ln := range lines {
		if w := visibleWidth(ln); w != want {
			t.Errorf("line %d width %d, want %d: %q", i, w, want, ln)
		}
	}
}

func TestCWithoutTTY(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, &buf)
	SetColorForcing(false, false)
	if got := C(fgRed, "x"); got != "x" {
		t.Errorf("C on a buffer = %q, want plain", got)
	}
	OK("saved")
	if got := buf.String(); got != "✔ saved\n" {
		t.Errorf("OK wrote %q", got)
	}
}
