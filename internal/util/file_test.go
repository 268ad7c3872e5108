package util

import (
	"strings"
	"testing"
)

func TestSHA1Hex(t *testing.T) {
	// Known digest of the empty string.
	if got := SHA1Hex(nil); got != "da39a3ee5e6b4b0d3255bfef95601890afd80709" {
		t.Errorf("SHA1Hex(nil) = %q", got)
	}
	if SHA1Hex([]byte("a")) == SHA1Hex([]byte("b")) {
		t.Error("distinct inputs must not collide trivially")
	}
}

func TestUnifiedDiff(t *testing.T) {
	if got := UnifiedDiff("same", "same", "f.ts", 3); got != "" {
		t.Errorf("equal inputs should yield empty diff, got %q", got)
	}

	diff := UnifiedDiff("import a from 'x';\n", "import a from 'y';\n", "f.ts", 3)
	for _, want := range []string{"--- a/f.ts", "+++ b/f.ts", "-import a from 'x';", "+import a from 'y';"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}

func TestLineSpan(t *testing.T) {
	content := "line1\nline2\nline3\n"

	tests := []struct {
		name       string
		start, end int
		wantStart  int
		wantEnd    int
	}{
		{"first_line", 0, 5, 1, 1},
		{"second_line", 6, 11, 2, 2},
		{"spanning_two_lines", 3, 9, 1, 2},
		{"end_clamped", 12, 100, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := LineSpan(content, tt.start, tt.end)
			if s != tt.wantStart || e != tt.wantEnd {
				t.Errorf("LineSpan(%d, %d) = (%d, %d), want (%d, %d)",
					tt.start, tt.end, s, e, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
