// Package mover orchestrates a file move: sanitize both endpoints,
// rewrite importers across the workspace, rebase the moved file's own
// relative imports, then write everything through a single writer.
package mover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/oxhq/movfx/internal/model"
	"github.com/oxhq/movfx/internal/rewrite"
	"github.com/oxhq/movfx/internal/safety"
	"github.com/oxhq/movfx/internal/util"
	"github.com/oxhq/movfx/internal/workspace"
	"github.com/oxhq/movfx/internal/writer"
)

// Mover performs move operations inside one workspace.
type Mover struct {
	ws     *workspace.Workspace
	engine *rewrite.Engine
	out    writer.Writer
	log    *slog.Logger
}

// New creates a mover. The writer decides whether anything reaches disk.
func New(ws *workspace.Workspace, engine *rewrite.Engine, out writer.Writer, log *slog.Logger) *Mover {
	return &Mover{ws: ws, engine: engine, out: out, log: log}
}

// Outcome carries the report plus the digests the history layer records.
type Outcome struct {
	Report       model.MoveReport
	SourceDigest string
	MovedDigest  string
}

// Move relocates srcInput to dstInput, both workspace-relative. The
// inputs are sanitized first and used as returned by the sanitizer from
// then on; a traversal attempt aborts the whole operation before any
// filesystem access.
func (m *Mover) Move(ctx context.Context, srcInput, dstInput string, dryRun bool) (*Outcome, error) {
	src, err := safety.SanitizeWorkspacePath(srcInput)
	if err != nil {
		return nil, err
	}
	dst, err := safety.SanitizeWorkspacePath(dstInput)
	if err != nil {
		return nil, err
	}

	if src == "" || dst == "" {
		return nil, fmt.Errorf("source and destination must name a file inside the workspace")
	}
	if src == dst {
		return nil, fmt.Errorf("source and destination are the same path: %s", src)
	}

	srcAbs := m.ws.Abs(src)
	infoBefore, err := os.Stat(srcAbs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrSourceMissing, src)
	}
	if infoBefore.IsDir() {
		return nil, fmt.Errorf("source %s is a directory; only files can be moved", src)
	}
	if _, err := os.Stat(m.ws.Abs(dst)); err == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrDestExists, dst)
	}

	original, err := os.ReadFile(srcAbs)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	m.log.Info("rewriting importers", "source", src, "destination", dst, "dry_run", dryRun)

	pass, err := m.engine.Run(ctx, src, dst)
	if err != nil {
		return nil, err
	}

	rebased := rewrite.RebaseRelativeImports(string(original), path.Dir(src), path.Dir(dst))

	// The rewrite pass re-reads nothing after this point; if the source
	// changed under us since the initial read, bail out.
	infoAfter, err := os.Stat(srcAbs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrSourceMissing, src)
	}
	if util.RaceDetected(infoBefore, infoAfter) {
		return nil, fmt.Errorf("%w: %s", model.ErrWriteRace, src)
	}

	if err := m.out.WriteFile(m.ws.Abs(dst), []byte(rebased), infoBefore.Mode()); err != nil {
		return nil, fmt.Errorf("writing destination: %w", err)
	}
	for rel, content := range pass.Changed {
		if err := m.out.WriteFile(m.ws.Abs(rel), content, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", rel, err)
		}
	}
	if err := m.out.Remove(srcAbs); err != nil {
		return nil, fmt.Errorf("removing source: %w", err)
	}

	report := model.MoveReport{
		SchemaVersion: model.CurrentSchemaVersion,
		ToolVersion:   model.CurrentToolVersion,
		Source:        src,
		Destination:   dst,
		DryRun:        dryRun,
		FilesScanned:  pass.FilesScanned,
		FilesChanged:  len(pass.Changed),
		Results:       pass.Results,
	}

	m.log.Info("move complete", "files_changed", len(pass.Changed), "dry_run", dryRun)

	return &Outcome{
		Report:       report,
		SourceDigest: util.SHA1Hex(original),
		MovedDigest:  util.SHA1Hex([]byte(rebased)),
	}, nil
}
