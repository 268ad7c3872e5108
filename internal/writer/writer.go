// Package writer abstracts how rewritten files reach disk. The dry-run
// writer records what would change without touching anything; the atomic
// writer stages content in a temp file and renames it into place.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Writer provides an abstraction for the file operations a move performs.
type Writer interface {
	WriteFile(path string, content []byte, perm os.FileMode) error
	Remove(path string) error
	Summary() string
}

// FileChange represents a file that would be or was modified.
type FileChange struct {
	Path         string
	OriginalSize int
	NewSize      int
	Removed      bool
}

// DryRunWriter tracks file changes without writing to disk.
type DryRunWriter struct {
	mu      sync.Mutex
	changes []FileChange
}

// NewDryRunWriter creates a new dry-run writer.
func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{}
}

// WriteFile simulates writing a file and tracks the change.
func (w *DryRunWriter) WriteFile(path string, content []byte, perm os.FileMode) error {
	var originalSize int
	if stat, err := os.Stat(path); err == nil {
		originalSize = int(stat.Size())
	}

	w.mu.Lock()
	w.changes = append(w.changes, FileChange{
		Path:         path,
		OriginalSize: originalSize,
		NewSize:      len(content),
	})
	w.mu.Unlock()
	return nil
}

// Remove simulates deleting a file.
func (w *DryRunWriter) Remove(path string) error {
	var originalSize int
	if stat, err := os.Stat(path); err == nil {
		originalSize = int(stat.Size())
	}

	w.mu.Lock()
	w.changes = append(w.changes, FileChange{
		Path:         path,
		OriginalSize: originalSize,
		Removed:      true,
	})
	w.mu.Unlock()
	return nil
}

// Changes returns the recorded changes in order.
func (w *DryRunWriter) Changes() []FileChange {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]FileChange, len(w.changes))
	copy(out, w.changes)
	return out
}

// Summary returns a summary of changes that would be made.
func (w *DryRunWriter) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.changes) == 0 {
		return "No changes would be made."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Would modify %d file(s):\n", len(w.changes)))
	for _, change := range w.changes {
		if change.Removed {
			sb.WriteString(fmt.Sprintf("  remove %s\n", change.Path))
			continue
		}
		diff := change.NewSize - change.OriginalSize
		sign := "+"
		if diff < 0 {
			sign = ""
		}
		sb.WriteString(fmt.Sprintf("  write  %s (%s%d bytes)\n", change.Path, sign, diff))
	}
	return sb.String()
}

// AtomicConfig controls atomic writing behavior.
type AtomicConfig struct {
	UseFsync   bool   // Force fsync before rename
	TempSuffix string // Suffix for temporary files
}

// DefaultAtomicConfig provides sensible defaults.
func DefaultAtomicConfig() AtomicConfig {
	return AtomicConfig{
		UseFsync:   false,
		TempSuffix: ".movfx.tmp",
	}
}

// AtomicWriter writes files via temp-file-plus-rename so readers never
// observe a half-written file.
type AtomicWriter struct {
	config AtomicConfig

	mu      sync.Mutex
	written []string
	removed []string
}

// NewAtomicWriter creates a new atomic writer.
func NewAtomicWriter(config AtomicConfig) *AtomicWriter {
	return &AtomicWriter{config: config}
}

// WriteFile atomically writes content to path, creating parent
// directories as needed and preserving the mode of an existing file.
func (w *AtomicWriter) WriteFile(path string, content []byte, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tempPath := path + w.config.TempSuffix
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tempFile.Write(content); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("writing content: %w", err)
	}

	if w.config.UseFsync {
		if err := tempFile.Sync(); err != nil {
			tempFile.Close()
			os.Remove(tempPath)
			return fmt.Errorf("syncing temp file: %w", err)
		}
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("atomic rename: %w", err)
	}

	w.mu.Lock()
	w.written = append(w.written, path)
	w.mu.Unlock()
	return nil
}

// Remove deletes a file.
func (w *AtomicWriter) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	w.mu.Lock()
	w.removed = append(w.removed, path)
	w.mu.Unlock()
	return nil
}

// Summary returns a summary of files that were written and removed.
func (w *AtomicWriter) Summary() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.written) == 0 && len(w.removed) == 0 {
		return "No files were written."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Wrote %d file(s), removed %d file(s):\n", len(w.written), len(w.removed)))
	for _, path := range w.written {
		sb.WriteString(fmt.Sprintf("  write  %s\n", path))
	}
	for _, path := range w.removed {
		sb.WriteString(fmt.Sprintf("  remove %s\n", path))
	}
	return sb.String()
}
