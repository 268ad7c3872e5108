// Package safety holds the path and pattern guards every file-touching
// operation in movfx goes through. All functions are pure and safe for
// concurrent use.
package safety

import (
	"fmt"
	"strings"
)

// regexSpecials lists every character escaped by EscapeRegex. This is a
// superset of what regexp.QuoteMeta covers: the forward slash is included
// so escaped fragments stay literal in dialects with bare delimiters.
const regexSpecials = `.*+?^${}()|[]\/`

// EscapeRegex returns s with every regex metacharacter backslash-escaped,
// so the result matches s literally when spliced into a pattern.
//
// It is total: any string is valid input, the empty string maps to the
// empty string, and strings without metacharacters come back unchanged.
// It is intentionally not idempotent; apply it exactly once per use.
func EscapeRegex(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(regexSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeRegexCharClass returns s escaped for use inside a [...] character
// class. It applies EscapeRegex first, then rewrites every remaining
// literal hyphen as the code-point escape \x2d. A backslash-escaped
// hyphen is ambiguous in some engines; the hex escape is not, and can
// never form a range with its neighbors.
//
// Like EscapeRegex, apply exactly once per use.
func EscapeRegexCharClass(s string) string {
	return strings.ReplaceAll(EscapeRegex(s), "-", `\x2d`)
}

// TraversalError reports a path that would escape the workspace root.
// Path holds the offending input exactly as supplied.
type TraversalError struct {
	Path string
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("path traversal outside workspace root is not allowed: %q", e.Path)
}

// SanitizeWorkspacePath normalizes a workspace-relative path and rejects
// any traversal attempt. Backslashes are treated as separators, redundant
// separators collapse, a single leading separator is stripped (absolute
// looking input is reinterpreted as workspace-relative), and "." segments
// drop out. If a ".." segment appears anywhere in the normalized form the
// whole input is rejected with a *TraversalError; no attempt is made to
// cancel ".." against earlier segments, since that kind of path algebra
// is where traversal bypasses live.
//
// The returned path uses forward slashes, never starts with a separator,
// and joined under the workspace root cannot name anything above it.
// Existence, permissions and symlink targets are the caller's concern.
func SanitizeWorkspacePath(path string) (string, error) {
	normalized := strings.ReplaceAll(path, `\`, "/")
	normalized = strings.TrimPrefix(normalized, "/")

	segments := strings.Split(normalized, "/")
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", &TraversalError{Path: path}
		}
		clean = append(clean, seg)
	}
	return strings.Join(clean, "/"), nil
}
