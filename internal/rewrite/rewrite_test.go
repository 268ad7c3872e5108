package rewrite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/movfx/internal/scanner"
	"github.com/oxhq/movfx/internal/workspace"
)

func TestSpecifierRewrites(t *testing.T) {
	got := SpecifierRewrites("packages/lib1/src/file.ts", "packages/lib2/src/file.ts")
	require.Len(t, got, 2)
	assert.Equal(t, Rewrite{From: "packages/lib1/src/file.ts", To: "packages/lib2/src/file.ts"}, got[0])
	assert.Equal(t, Rewrite{From: "packages/lib1/src/file", To: "packages/lib2/src/file"}, got[1])
}

func TestRelativeRewrites(t *testing.T) {
	got := RelativeRewrites("packages/lib1/src", "packages/lib1/src/file.ts", "packages/lib2/src/file.ts")
	require.NotEmpty(t, got)
	assert.Equal(t, "./file.ts", got[0].From)
	assert.Equal(t, "../../lib2/src/file.ts", got[0].To)
}

func TestRelativeRewritesSameTargetSkipped(t *testing.T) {
	// Moving within the same directory changes nothing for importers there
	// only when the name is unchanged; a rename must still be rewritten.
	got := RelativeRewrites("packages/lib1/src", "packages/lib1/src/a.ts", "packages/lib1/src/b.ts")
	require.NotEmpty(t, got)
	assert.Equal(t, "./a.ts", got[0].From)
	assert.Equal(t, "./b.ts", got[0].To)
}

func TestRebaseRelativeImports(t *testing.T) {
	content := `import { a } from './sibling';
import { b } from '../other/mod';
import { c } from '@acme/lib1';
`
	got := RebaseRelativeImports(content, "packages/lib1/src", "packages/lib2/nested/src")

	assert.Contains(t, got, `'../../../lib1/src/sibling'`)
	assert.Contains(t, got, `'../../../lib1/other/mod'`)
	// Non-relative specifiers are untouched.
	assert.Contains(t, got, `'@acme/lib1'`)
}

func TestRebaseRelativeImportsEscapingSpecifierLeftAlone(t *testing.T) {
	content := `import { x } from '../../outside';`
	got := RebaseRelativeImports(content, "src", "lib/src")
	assert.Equal(t, content, got, "specifier resolving above the root must not be rewritten")
}

func newWorkspace(t *testing.T, manifest string, files map[string]string) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, workspace.ManifestName), []byte(manifest), 0o644))

	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	ws, err := workspace.Load(root)
	require.NoError(t, err)
	return ws
}

func newTestWorkspace(t *testing.T, files map[string]string) *workspace.Workspace {
	t.Helper()
	manifest := `version: 1
projects:
  - name: lib1
    root: packages/lib1
  - name: lib2
    root: packages/lib2
`
	return newWorkspace(t, manifest, files)
}

const aliasedManifest = `version: 1
projects:
  - name: lib1
    root: packages/lib1
    sourceRoot: packages/lib1/src
    alias: "@acme/lib1"
  - name: lib2
    root: packages/lib2
    sourceRoot: packages/lib2/src
    alias: "@acme/lib2"
  - name: web
    root: apps/web
`

func TestEngineRun(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"packages/lib1/src/file.ts":  "export const thing = 1;\n",
		"packages/lib1/src/user.ts":  "import { thing } from './file';\n",
		"packages/lib2/src/other.ts": "import { thing } from 'packages/lib1/src/file';\n",
		"packages/lib2/src/plain.ts": "export {};\n",
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	out, err := engine.Run(context.Background(),
		"packages/lib1/src/file.ts", "packages/lib2/src/file.ts")
	require.NoError(t, err)

	assert.Equal(t, 4, out.FilesScanned)
	changed := out.Changed
	require.Len(t, changed, 2)
	assert.Equal(t,
		"import { thing } from '../../lib2/src/file';\n",
		string(changed["packages/lib1/src/user.ts"]))
	assert.Equal(t,
		"import { thing } from 'packages/lib2/src/file';\n",
		string(changed["packages/lib2/src/other.ts"]))

	byFile := make(map[string]int)
	for _, r := range out.Results {
		require.True(t, r.Success, "file %s: %s", r.File, r.Error)
		byFile[r.File] = r.ModifiedCount
		assert.NotEmpty(t, r.Diff)
		assert.NotEqual(t, r.OriginalSHA1, r.ModifiedSHA1)
	}
	assert.Equal(t, 1, byFile["packages/lib1/src/user.ts"])
	assert.Equal(t, 1, byFile["packages/lib2/src/other.ts"])
}

func TestEngineSkipsMovedFileItself(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"packages/lib1/src/file.ts": "import { x } from 'packages/lib1/src/file';\n",
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	out, err := engine.Run(context.Background(),
		"packages/lib1/src/file.ts", "packages/lib2/src/file.ts")
	require.NoError(t, err)
	assert.Empty(t, out.Changed, "the moved file is rebased separately, not rewritten in place")
}

func TestEngineMetacharacterFilename(t *testing.T) {
	// A filename with regex metacharacters must be matched literally.
	ws := newTestWorkspace(t, map[string]string{
		"packages/lib1/src/file.v2.ts": "export {};\n",
		"packages/lib1/src/decoy.ts":   "import {} from './fileXv2';\n",
		"packages/lib1/src/user.ts":    "import {} from './file.v2';\n",
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	out, err := engine.Run(context.Background(),
		"packages/lib1/src/file.v2.ts", "packages/lib2/src/file.v2.ts")
	require.NoError(t, err)

	require.Len(t, out.Changed, 1)
	_, hit := out.Changed["packages/lib1/src/user.ts"]
	assert.True(t, hit, "only the literal importer may be rewritten, got %v", out.Changed)
}

func TestAliasRewrites(t *testing.T) {
	ws := newWorkspace(t, aliasedManifest, nil)

	t.Run("index_module_to_plain_file", func(t *testing.T) {
		got := AliasRewrites(ws, "packages/lib1/src/index.ts", "packages/lib2/src/file.ts")
		require.NotEmpty(t, got)
		assert.Equal(t, Rewrite{From: "@acme/lib1", To: "@acme/lib2/file"}, got[0])
		assert.Contains(t, got, Rewrite{From: "@acme/lib1/index", To: "@acme/lib2/file"})
	})

	t.Run("deep_file", func(t *testing.T) {
		got := AliasRewrites(ws, "packages/lib1/src/util.ts", "packages/lib2/src/util.ts")
		require.Len(t, got, 2)
		assert.Equal(t, Rewrite{From: "@acme/lib1/util.ts", To: "@acme/lib2/util"}, got[0])
		assert.Equal(t, Rewrite{From: "@acme/lib1/util", To: "@acme/lib2/util"}, got[1])
	})

	t.Run("index_to_index_retargets_alias_base", func(t *testing.T) {
		got := AliasRewrites(ws, "packages/lib1/src/index.ts", "packages/lib2/src/index.ts")
		require.Len(t, got, 1)
		assert.Equal(t, Rewrite{From: "@acme/lib1", To: "@acme/lib2", Prefix: true}, got[0])
	})

	t.Run("unaliased_project", func(t *testing.T) {
		got := AliasRewrites(ws, "apps/web/main.ts", "packages/lib2/src/main.ts")
		assert.Nil(t, got)
	})

	t.Run("destination_outside_any_alias", func(t *testing.T) {
		got := AliasRewrites(ws, "packages/lib1/src/util.ts", "apps/web/util.ts")
		require.NotEmpty(t, got)
		assert.Equal(t, "apps/web/util", got[0].To)
	})
}

func TestEngineRunRewritesAliasImport(t *testing.T) {
	ws := newWorkspace(t, aliasedManifest, map[string]string{
		"packages/lib1/src/index.ts": "export const thing = 1;\n",
		"apps/web/main.ts":           "import { thing } from '@acme/lib1';\n",
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	out, err := engine.Run(context.Background(),
		"packages/lib1/src/index.ts", "packages/lib2/src/file.ts")
	require.NoError(t, err)

	require.Len(t, out.Changed, 1)
	assert.Equal(t,
		"import { thing } from '@acme/lib2/file';\n",
		string(out.Changed["apps/web/main.ts"]))
}

func TestEngineRunRetargetsAliasBase(t *testing.T) {
	ws := newWorkspace(t, aliasedManifest, map[string]string{
		"packages/lib1/src/index.ts":     "export const thing = 1;\n",
		"packages/lib1/src/deep/util.ts": "export const util = 2;\n",
		"apps/web/main.ts": "import { thing } from '@acme/lib1';\n" +
			"import { util } from '@acme/lib1/deep/util';\n",
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	out, err := engine.Run(context.Background(),
		"packages/lib1/src/index.ts", "packages/lib2/src/index.ts")
	require.NoError(t, err)

	require.Len(t, out.Changed, 1)
	got := string(out.Changed["apps/web/main.ts"])
	assert.Contains(t, got, "'@acme/lib2'")
	assert.Contains(t, got, "'@acme/lib2/deep/util'", "deep suffix must carry over to the new alias base")
	assert.NotContains(t, got, "@acme/lib1")
}

func TestEngineRunHonorsProjectGlobs(t *testing.T) {
	manifest := `version: 1
projects:
  - name: lib1
    root: packages/lib1
  - name: lib2
    root: packages/lib2
    exclude: ["generated/**"]
`
	ws := newWorkspace(t, manifest, map[string]string{
		"packages/lib1/src/file.ts":      "export const thing = 1;\n",
		"packages/lib2/src/user.ts":      "import { thing } from 'packages/lib1/src/file';\n",
		"packages/lib2/generated/gen.ts": "import { thing } from 'packages/lib1/src/file';\n",
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	out, err := engine.Run(context.Background(),
		"packages/lib1/src/file.ts", "packages/lib2/src/file.ts")
	require.NoError(t, err)

	require.Len(t, out.Changed, 1)
	_, hit := out.Changed["packages/lib2/src/user.ts"]
	assert.True(t, hit)
	_, hit = out.Changed["packages/lib2/generated/gen.ts"]
	assert.False(t, hit, "a file the owning project excludes must not be rewritten")
}

func TestEngineRunChangeOffsetsReferenceOriginal(t *testing.T) {
	content := "import { a } from './file';\nimport { b } from 'packages/lib1/src/file';\n"
	ws := newTestWorkspace(t, map[string]string{
		"packages/lib1/src/file.ts": "export {};\n",
		"packages/lib1/src/user.ts": content,
	})

	scan := scanner.New(scanner.Config{Root: ws.Root, IncludeGlobs: []string{"**/*.ts"}})
	engine := NewEngine(ws, scan)

	// The renamed destination makes every replacement a different length
	// than what it replaces, so stale offsets would point at shifted text.
	out, err := engine.Run(context.Background(),
		"packages/lib1/src/file.ts", "packages/lib2/src/renamed.ts")
	require.NoError(t, err)

	for _, r := range out.Results {
		if r.File != "packages/lib1/src/user.ts" {
			continue
		}
		require.Len(t, r.Changes, 2)
		for _, c := range r.Changes {
			assert.Equal(t, c.Original, content[c.Start:c.End],
				"change span must index into the original content")
		}
	}

	assert.Equal(t,
		"import { a } from '../../lib2/src/renamed';\nimport { b } from 'packages/lib2/src/renamed';\n",
		string(out.Changed["packages/lib1/src/user.ts"]))
}
