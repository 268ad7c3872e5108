package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SHA1Hex calculates the SHA1 hash of a byte slice and returns it as a hex string.
func SHA1Hex(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}

// RaceDetected checks if a file has been modified since it was last read.
func RaceDetected(before, after os.FileInfo) bool {
	return before.ModTime() != after.ModTime() || before.Size() != after.Size()
}

// UnifiedDiff returns a unified diff of two strings, or "" when equal.
func UnifiedDiff(from, to, path string, context int) string {
	if from == to {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n@@ changes @@\n%d bytes -> %d bytes\n",
			path, path, len(from), len(to))
	}
	return text
}

// LineSpan returns the 1-based start and end line of the byte span
// [start, end) in content.
func LineSpan(content string, start, end int) (int, int) {
	if start > len(content) {
		start = len(content)
	}
	if end > len(content) {
		end = len(content)
	}
	lineStart := strings.Count(content[:start], "\n") + 1
	lineEnd := lineStart + strings.Count(content[start:end], "\n")
	return lineStart, lineEnd
}
