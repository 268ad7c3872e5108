package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/oxhq/movfx/db"
	"github.com/oxhq/movfx/internal/config"
	"github.com/oxhq/movfx/internal/logging"
	"github.com/oxhq/movfx/internal/model"
	"github.com/oxhq/movfx/internal/mover"
	"github.com/oxhq/movfx/internal/rewrite"
	"github.com/oxhq/movfx/internal/safety"
	"github.com/oxhq/movfx/internal/scanner"
	"github.com/oxhq/movfx/internal/util"
	"github.com/oxhq/movfx/internal/workspace"
	"github.com/oxhq/movfx/internal/writer"
	"github.com/oxhq/movfx/models"
)

// env bundles everything a handler needs for one invocation.
type env struct {
	cfg *config.Config
	ws  *workspace.Workspace
	log *slog.Logger
}

func setup(g globalFlags) (*env, error) {
	cfg := config.Load()

	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	format := logging.FormatText
	if g.jsonOut {
		format = logging.FormatJSON
	}
	log := logging.New(logging.Config{Level: level, Format: format})

	rootHint := g.workspace
	if rootHint == "" {
		rootHint = cfg.Workspace
	}
	if rootHint == "" {
		rootHint = "."
	}
	root, err := workspace.FindRoot(rootHint)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.Load(root)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, ws: ws, log: log}, nil
}

// openStore opens the move journal. A relative DSN lives under the
// workspace root so each monorepo keeps its own history.
func (e *env) openStore() (*db.Store, error) {
	dsn := e.cfg.HistoryDB
	if !filepath.IsAbs(dsn) && !isRemoteDSN(dsn) {
		dsn = filepath.Join(e.ws.Root, dsn)
	}
	conn, err := db.Connect(dsn, false)
	if err != nil {
		return nil, fmt.Errorf("opening move journal: %w", err)
	}
	return db.NewStore(conn), nil
}

func isRemoteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "libsql")
}

func runMove(ctx context.Context, g globalFlags, src, dst string, dryRun bool, include, exclude []string) error {
	e, err := setup(g)
	if err != nil {
		return err
	}

	outcome, err := e.moveOnce(ctx, src, dst, dryRun, include, exclude)
	if err != nil {
		return describeMoveError(err)
	}

	store, err := e.openStore()
	if err != nil {
		e.log.Warn("move applied but not recorded", "error", err)
	} else {
		id, err := store.Record(e.ws.Root, outcome.Report, outcome.SourceDigest, outcome.MovedDigest)
		if err != nil {
			e.log.Warn("move applied but not recorded", "error", err)
		} else {
			outcome.Report.OperationID = id
		}
	}

	return emitReport(g, outcome.Report)
}

func (e *env) moveOnce(ctx context.Context, src, dst string, dryRun bool, include, exclude []string) (*mover.Outcome, error) {
	scan := scanner.New(scanner.Config{
		Root:         e.ws.Root,
		MaxBytes:     e.cfg.MaxFileBytes,
		IncludeGlobs: include,
		ExcludeGlobs: exclude,
		NoGitignore:  e.cfg.NoGitignore,
	})
	engine := rewrite.NewEngine(e.ws, scan)

	var out writer.Writer
	if dryRun {
		out = writer.NewDryRunWriter()
	} else {
		out = writer.NewAtomicWriter(writer.DefaultAtomicConfig())
	}

	m := mover.New(e.ws, engine, out, e.log)
	return m.Move(ctx, src, dst, dryRun)
}

// describeMoveError attaches the machine error code for JSON consumers.
func describeMoveError(err error) error {
	var terr *safety.TraversalError
	code := model.ECUnknown
	switch {
	case errors.As(err, &terr):
		code = model.ECPathTraversal
	case errors.Is(err, model.ErrSourceMissing):
		code = model.ECSourceMissing
	case errors.Is(err, model.ErrDestExists):
		code = model.ECDestExists
	case errors.Is(err, model.ErrWriteRace):
		code = model.ECWriteRace
	case errors.Is(err, model.ErrNoWorkspace):
		code = model.ECNoWorkspace
	}
	return fmt.Errorf("[%s] %w", code, err)
}

func emitReport(g globalFlags, report model.MoveReport) error {
	if g.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	verb := "Moved"
	if report.DryRun {
		verb = "Would move"
	}
	fmt.Printf("%s %s -> %s\n", verb, report.Source, report.Destination)
	fmt.Printf("Scanned %d file(s), rewrote %d importer(s)\n", report.FilesScanned, report.FilesChanged)
	for _, r := range report.Results {
		if r.Error != "" {
			fmt.Printf("  %s: error: %s\n", r.File, r.Error)
			continue
		}
		fmt.Printf("  %s: %d specifier(s)\n", r.File, r.ModifiedCount)
		if report.DryRun && r.Diff != "" {
			fmt.Print(r.Diff)
		}
	}
	if report.OperationID != "" {
		fmt.Printf("Recorded as operation %s\n", report.OperationID)
	}
	return nil
}

func runCheck(g globalFlags, paths []string) error {
	e, err := setup(g)
	if err != nil {
		return err
	}

	type checkResult struct {
		Input     string `json:"input"`
		Sanitized string `json:"sanitized,omitempty"`
		Project   string `json:"project,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	var results []checkResult
	failed := false
	for _, p := range paths {
		clean, err := safety.SanitizeWorkspacePath(p)
		if err != nil {
			failed = true
			results = append(results, checkResult{Input: p, Error: err.Error()})
			continue
		}
		res := checkResult{Input: p, Sanitized: clean}
		if proj, err := e.ws.ProjectFor(clean); err == nil {
			res.Project = proj.Name
		}
		results = append(results, res)
	}

	if g.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Error != "" {
				fmt.Printf("REJECT %s: %s\n", r.Input, r.Error)
				continue
			}
			owner := "(unowned)"
			if r.Project != "" {
				owner = r.Project
			}
			fmt.Printf("OK     %s -> %s %s\n", r.Input, r.Sanitized, owner)
		}
	}

	if failed {
		return fmt.Errorf("one or more paths were rejected")
	}
	return nil
}

func runHistory(g globalFlags, limit int) error {
	e, err := setup(g)
	if err != nil {
		return err
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}

	if limit <= 0 {
		limit = e.cfg.HistoryLimit
	}
	moves, err := store.List(e.ws.Root, limit)
	if err != nil {
		return err
	}

	if g.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(moves)
	}

	if len(moves) == 0 {
		fmt.Println("No moves recorded for this workspace.")
		return nil
	}
	for _, m := range moves {
		fmt.Printf("%s  %-8s  %s -> %s  (%d file(s) rewritten)\n",
			m.CreatedAt.Format("2006-01-02 15:04:05"), m.Status, m.Source, m.Destination, m.FilesChanged)
		fmt.Printf("  id: %s\n", m.ID)
	}
	return nil
}

func runRevert(ctx context.Context, g globalFlags, id string) error {
	e, err := setup(g)
	if err != nil {
		return err
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}

	rec, err := store.Get(id)
	if err != nil {
		return err
	}
	if rec.Status != models.StatusApplied {
		return fmt.Errorf("%w: %s is %s", model.ErrNotReverted, id, rec.Status)
	}

	// Refuse to revert when the moved file changed since the move.
	current, err := os.ReadFile(e.ws.Abs(rec.Destination))
	if err != nil {
		return fmt.Errorf("%w: destination unreadable: %v", model.ErrNotReverted, err)
	}
	if digest := util.SHA1Hex(current); rec.MovedDigest != "" && digest != rec.MovedDigest {
		return fmt.Errorf("%w: %s was modified after the move (digest %s, recorded %s)",
			model.ErrNotReverted, rec.Destination, digest, rec.MovedDigest)
	}

	outcome, err := e.moveOnce(ctx, rec.Destination, rec.Source, false, defaultIncludes(), nil)
	if err != nil {
		return describeMoveError(err)
	}

	if err := store.MarkReverted(id); err != nil {
		return err
	}

	e.log.Info("move reverted", "id", id)
	return emitReport(g, outcome.Report)
}

func defaultIncludes() []string {
	return []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"}
}
