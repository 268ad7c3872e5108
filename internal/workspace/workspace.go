// Package workspace models the monorepo layout movfx operates on: a root
// directory identified by a workspace.yaml manifest and the projects
// declared inside it.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/oxhq/movfx/internal/model"
	"github.com/oxhq/movfx/internal/safety"
)

// ManifestName is the marker file that identifies a workspace root.
const ManifestName = "workspace.yaml"

// Project is a single buildable unit inside the workspace.
type Project struct {
	Name       string   `yaml:"name"`
	Root       string   `yaml:"root"`
	SourceRoot string   `yaml:"sourceRoot,omitempty"`
	Alias      string   `yaml:"alias,omitempty"`
	Include    []string `yaml:"include,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
}

// Manifest is the on-disk shape of workspace.yaml.
type Manifest struct {
	Version  int       `yaml:"version"`
	Projects []Project `yaml:"projects"`
}

// Workspace is a loaded manifest bound to its root directory.
type Workspace struct {
	Root     string
	Projects []Project
}

// FindRoot walks up from start looking for a workspace.yaml (or, failing
// that, a .git directory) and returns the directory containing it.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for _, marker := range []string{ManifestName, ".git"} {
		probe := dir
		for {
			if _, err := os.Stat(filepath.Join(probe, marker)); err == nil {
				return probe, nil
			}
			parent := filepath.Dir(probe)
			if parent == probe {
				break
			}
			probe = parent
		}
	}

	return "", fmt.Errorf("%w: no %s or .git found above %s", model.ErrNoWorkspace, ManifestName, start)
}

// Load reads and validates the manifest under root.
func Load(root string) (*Workspace, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading workspace manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing workspace manifest: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Projects))
	for i := range m.Projects {
		p := &m.Projects[i]
		if p.Name == "" {
			return nil, fmt.Errorf("project %d has no name", i)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("duplicate project name %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		clean, err := safety.SanitizeWorkspacePath(p.Root)
		if err != nil {
			return nil, fmt.Errorf("project %q root: %w", p.Name, err)
		}
		if clean == "" {
			return nil, fmt.Errorf("project %q root must not be the workspace root", p.Name)
		}
		p.Root = clean

		if p.SourceRoot != "" {
			clean, err := safety.SanitizeWorkspacePath(p.SourceRoot)
			if err != nil {
				return nil, fmt.Errorf("project %q sourceRoot: %w", p.Name, err)
			}
			p.SourceRoot = clean
		}
	}

	// Longest root first so nested projects win ownership lookups.
	sort.SliceStable(m.Projects, func(i, j int) bool {
		return len(m.Projects[i].Root) > len(m.Projects[j].Root)
	})

	return &Workspace{Root: root, Projects: m.Projects}, nil
}

// ProjectFor returns the project owning the given workspace-relative
// path. The path is sanitized before matching.
func (w *Workspace) ProjectFor(relPath string) (*Project, error) {
	clean, err := safety.SanitizeWorkspacePath(relPath)
	if err != nil {
		return nil, err
	}

	for i := range w.Projects {
		root := w.Projects[i].Root
		if clean == root || strings.HasPrefix(clean, root+"/") {
			return &w.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnknownProject, relPath)
}

// Selects reports whether the project's include and exclude globs admit
// the workspace-relative path rel, which must lie under the project
// root. Globs are matched against the project-relative path; an empty
// include list admits everything not excluded.
func (p *Project) Selects(rel string) bool {
	sub := strings.TrimPrefix(strings.TrimPrefix(rel, p.Root), "/")
	for _, g := range p.Exclude {
		if ok, err := doublestar.Match(g, sub); err == nil && ok {
			return false
		}
	}
	if len(p.Include) == 0 {
		return true
	}
	for _, g := range p.Include {
		if ok, err := doublestar.Match(g, sub); err == nil && ok {
			return true
		}
	}
	return false
}

// ProjectByName looks a project up by its manifest name.
func (w *Workspace) ProjectByName(name string) (*Project, bool) {
	for i := range w.Projects {
		if w.Projects[i].Name == name {
			return &w.Projects[i], true
		}
	}
	return nil, false
}

// Abs converts a sanitized workspace-relative path to an absolute
// filesystem path under the workspace root.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// Rel converts an absolute path under the root back to the canonical
// workspace-relative form.
func (w *Workspace) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", err
	}
	return safety.SanitizeWorkspacePath(filepath.ToSlash(rel))
}
