// Package rewrite applies import-specifier rewrites across a workspace
// after a file move. It never builds a pattern from a raw string: every
// specifier goes through internal/pattern, which escapes at the boundary.
package rewrite

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/oxhq/movfx/internal/model"
	"github.com/oxhq/movfx/internal/pattern"
	"github.com/oxhq/movfx/internal/scanner"
	"github.com/oxhq/movfx/internal/util"
	"github.com/oxhq/movfx/internal/workspace"
)

// Rewrite maps one specifier spelling to its replacement. A prefix
// rewrite also matches deep paths under From and carries the suffix
// over to the replacement.
type Rewrite struct {
	From   string
	To     string
	Prefix bool
}

// SpecifierRewrites pairs every specifier form of src with the matching
// form of dst. Forms are index-aligned by construction when both paths
// share an extension shape; when they do not, only the exact form is
// rewritten.
func SpecifierRewrites(src, dst string) []Rewrite {
	fromForms := pattern.SpecifierForms(src)
	toForms := pattern.SpecifierForms(dst)

	n := len(fromForms)
	if len(toForms) < n {
		n = len(toForms)
	}

	out := make([]Rewrite, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Rewrite{From: fromForms[i], To: toForms[i]})
	}
	return out
}

// RelativeRewrites derives the relative-import spellings an importer in
// importerDir would use for src, paired with the spelling for dst.
// importerDir, src and dst are slash-separated workspace-relative paths.
func RelativeRewrites(importerDir, src, dst string) []Rewrite {
	fromForms := pattern.SpecifierForms(src)
	toForms := pattern.SpecifierForms(dst)

	n := len(fromForms)
	if len(toForms) < n {
		n = len(toForms)
	}

	out := make([]Rewrite, 0, n)
	for i := 0; i < n; i++ {
		from := relSpecifier(importerDir, fromForms[i])
		to := relSpecifier(importerDir, toForms[i])
		if from == "" || to == "" || from == to {
			continue
		}
		out = append(out, Rewrite{From: from, To: to})
	}
	return out
}

// AliasRewrites derives rewrites for alias-style imports of src. A
// project that declares an alias exposes the files under its sourceRoot
// (or root) as "<alias>/<path>", and its index module as the bare
// alias. Moving a file out from under the alias retargets those
// spellings. When both endpoints are the index modules of aliased
// projects the alias base itself is retargeted and deep suffixes carry
// over unchanged.
func AliasRewrites(ws *workspace.Workspace, src, dst string) []Rewrite {
	p := aliasedOwner(ws, src)
	if p == nil {
		return nil
	}
	rel, ok := underSourceRoot(p, src)
	if !ok {
		return nil
	}

	to := aliasSpelling(ws, dst)
	forms := pattern.SpecifierForms(rel)

	if forms[len(forms)-1] == "index" {
		if q := aliasedOwner(ws, dst); q != nil && q.Name != p.Name {
			if dstRel, ok := underSourceRoot(q, dst); ok && isIndexModule(dstRel) {
				return []Rewrite{{From: p.Alias, To: q.Alias, Prefix: true}}
			}
		}
		out := []Rewrite{{From: p.Alias, To: to}}
		for _, f := range forms {
			out = append(out, Rewrite{From: p.Alias + "/" + f, To: to})
		}
		return out
	}

	out := make([]Rewrite, 0, len(forms))
	for _, f := range forms {
		out = append(out, Rewrite{From: p.Alias + "/" + f, To: to})
	}
	return out
}

// aliasedOwner returns the aliased project owning rel, if any.
func aliasedOwner(ws *workspace.Workspace, rel string) *workspace.Project {
	p, err := ws.ProjectFor(rel)
	if err != nil || p.Alias == "" {
		return nil
	}
	return p
}

// underSourceRoot strips the project's alias base (sourceRoot, falling
// back to the project root) from rel.
func underSourceRoot(p *workspace.Project, rel string) (string, bool) {
	base := p.SourceRoot
	if base == "" {
		base = p.Root
	}
	if !strings.HasPrefix(rel, base+"/") {
		return "", false
	}
	return strings.TrimPrefix(rel, base+"/"), true
}

// isIndexModule reports whether rel names an index module at the alias
// base itself.
func isIndexModule(rel string) bool {
	forms := pattern.SpecifierForms(rel)
	return forms[len(forms)-1] == "index"
}

// aliasSpelling returns the canonical import spelling for dst: its
// alias form when it lands under an aliased sourceRoot, otherwise the
// extension-stripped workspace-relative path.
func aliasSpelling(ws *workspace.Workspace, dst string) string {
	if q := aliasedOwner(ws, dst); q != nil {
		if rel, ok := underSourceRoot(q, dst); ok {
			if isIndexModule(rel) {
				return q.Alias
			}
			forms := pattern.SpecifierForms(rel)
			spelling := forms[0]
			if len(forms) > 1 {
				spelling = forms[1]
			}
			return q.Alias + "/" + spelling
		}
	}
	forms := pattern.SpecifierForms(dst)
	if len(forms) > 1 {
		return forms[1]
	}
	return forms[0]
}

// relSpecifier renders target as a relative import from fromDir, using
// the ./ prefix convention for same-or-below paths.
func relSpecifier(fromDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		return ""
	}
	spec := filepath.ToSlash(rel)
	if !strings.HasPrefix(spec, "../") && spec != ".." {
		spec = "./" + spec
	}
	return spec
}

// Engine rewrites import specifiers across the files a scanner yields.
type Engine struct {
	ws   *workspace.Workspace
	scan *scanner.Scanner
}

// NewEngine creates an engine bound to a workspace and scanner.
func NewEngine(ws *workspace.Workspace, scan *scanner.Scanner) *Engine {
	return &Engine{ws: ws, scan: scan}
}

// Outcome summarizes one rewrite pass. Changed holds new contents keyed
// by relative path; nothing is written to disk by the engine.
type Outcome struct {
	Results      []model.Result
	Changed      map[string][]byte
	FilesScanned int
}

// Run scans the workspace and rewrites references to src so they point
// at dst. Both are sanitized workspace-relative paths.
func (e *Engine) Run(ctx context.Context, src, dst string) (*Outcome, error) {
	files, err := e.scan.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning workspace: %w", err)
	}

	global := SpecifierRewrites(src, dst)
	global = append(global, AliasRewrites(e.ws, src, dst)...)

	out := &Outcome{
		Changed:      make(map[string][]byte),
		FilesScanned: len(files),
	}

	for _, rel := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if rel == src {
			continue
		}
		if p, err := e.ws.ProjectFor(rel); err == nil && !p.Selects(rel) {
			continue
		}

		rewrites := append(RelativeRewrites(path.Dir(rel), src, dst), global...)

		res, content, err := e.rewriteFile(rel, rewrites)
		if err != nil {
			out.Results = append(out.Results, model.Result{
				File:      rel,
				Error:     err.Error(),
				ErrorCode: model.ECReadError,
			})
			continue
		}
		if res.ModifiedCount == 0 {
			continue
		}

		out.Results = append(out.Results, res)
		out.Changed[rel] = content
	}

	return out, nil
}

// rewriteFile applies the rewrites to a single file's content. Matches
// are located against the original content only, so the recorded byte
// offsets describe the same bytes the diff and digests do.
func (e *Engine) rewriteFile(rel string, rewrites []Rewrite) (model.Result, []byte, error) {
	data, err := os.ReadFile(e.ws.Abs(rel))
	if err != nil {
		return model.Result{}, nil, err
	}
	original := string(data)

	type match struct {
		start, end int
		text       string
	}
	var found []match

	for _, rw := range rewrites {
		var re *regexp.Regexp
		var err error
		if rw.Prefix {
			re, err = pattern.ImportPrefix(rw.From)
		} else {
			re, err = pattern.ImportSpecifier(rw.From)
		}
		if err != nil {
			return model.Result{}, nil, fmt.Errorf("building pattern for %q: %w", rw.From, err)
		}

		for _, span := range re.FindAllStringSubmatchIndex(original, -1) {
			var text string
			if rw.Prefix {
				// Groups: open quote, deep suffix, close quote.
				text = original[span[2]:span[3]] + rw.To + original[span[4]:span[5]] + original[span[6]:span[7]]
			} else {
				text = original[span[2]:span[3]] + rw.To + original[span[4]:span[5]]
			}
			found = append(found, match{start: span[0], end: span[1], text: text})
		}
	}

	if len(found) == 0 {
		return model.Result{File: rel, Success: true}, nil, nil
	}

	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	var b strings.Builder
	var changes []model.Change
	changedBytes := 0
	last := 0
	for _, m := range found {
		if m.start < last {
			continue // overlaps a match already rewritten
		}
		orig := original[m.start:m.end]
		lineStart, lineEnd := util.LineSpan(original, m.start, m.end)
		changes = append(changes, model.Change{
			LineStart: lineStart,
			LineEnd:   lineEnd,
			Start:     m.start,
			End:       m.end,
			Original:  orig,
			New:       m.text,
		})
		d := len(m.text) - len(orig)
		if d < 0 {
			d = -d
		}
		changedBytes += d
		b.WriteString(original[last:m.start])
		b.WriteString(m.text)
		last = m.end
	}
	b.WriteString(original[last:])
	content := b.String()

	if content == original {
		return model.Result{File: rel, Success: true}, nil, nil
	}

	return model.Result{
		File:          rel,
		Success:       true,
		ModifiedCount: len(changes),
		ChangedBytes:  changedBytes,
		OriginalSHA1:  util.SHA1Hex([]byte(original)),
		ModifiedSHA1:  util.SHA1Hex([]byte(content)),
		Diff:          util.UnifiedDiff(original, content, rel, 3),
		Changes:       changes,
	}, []byte(content), nil
}

// RebaseRelativeImports rewrites the relative specifiers inside a moved
// file so they keep pointing at their old targets from the new location.
// Specifiers that would resolve above the workspace root are left alone;
// the sanitizer will reject them if they ever reach a file operation.
func RebaseRelativeImports(content, oldDir, newDir string) string {
	if oldDir == newDir {
		return content
	}

	re := pattern.RelativeImport()
	var b strings.Builder
	last := 0
	for _, span := range re.FindAllStringSubmatchIndex(content, -1) {
		spec := content[span[4]:span[5]]
		target := path.Join(oldDir, spec)
		if target == ".." || strings.HasPrefix(target, "../") {
			continue
		}
		rebased := relSpecifier(newDir, target)
		if rebased == "" {
			continue
		}
		b.WriteString(content[last:span[4]])
		b.WriteString(rebased)
		last = span[5]
	}
	b.WriteString(content[last:])
	return b.String()
}
