package tui

import (
	"reflect"
	"strings"
	"testing"
)

func TestOverlayCenter(t *testing.T) {
	base := strings.Join([]string{"aaaaa", "aaaaa", "aaaaa"}, "\n")
	out := overlayCenter(base, "X", 5, 3)
	want := []string{"aaaaa", "aaXaa", "aaaaa"}
	if got := strings.Split(out, "\n"); !reflect.DeepEqual(got, want) {
		t.Fatalf("overlayCenter = %q, want %q", got, want)
	}
}

func TestOverlayAtPadsShortLines(t *testing.T) {
	out := overlayAt("ab\n", "XY", 4, 1, 8, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want 2", lines)
	}
	if lines[0] != "ab" || lines[1] != "    XY  " {
		t.Fatalf("lines = %q", lines)
	}
}

func TestOverlayAtSkipsRowsOutside(t *testing.T) {
	if out := overlayAt("abc", "1\n2\n3", 0, 0, 3, 1); out != "1bc" {
		t.Fatalf("overlayAt = %q, want 1bc", out)
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 2, "abcd"},
		{"ab", 0, "ab"},
	}
	for _, tt := range tests {
		if got := padRight(tt.in, tt.width); got != tt.want {
			t.Fatalf("padRight(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
