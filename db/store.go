package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oxhq/movfx/internal/model"
	"github.com/oxhq/movfx/models"
)

// Store wraps the move journal with the operations the CLI needs.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record persists a completed move and returns its operation id.
func (s *Store) Record(workspace string, report model.MoveReport, sourceDigest, movedDigest string) (string, error) {
	rewrites, err := json.Marshal(report.Results)
	if err != nil {
		return "", fmt.Errorf("encoding rewrite results: %w", err)
	}

	status := models.StatusApplied
	if report.DryRun {
		status = models.StatusDryRun
	}

	rec := models.Move{
		ID:           uuid.NewString(),
		Workspace:    workspace,
		Source:       report.Source,
		Destination:  report.Destination,
		SourceDigest: sourceDigest,
		MovedDigest:  movedDigest,
		FilesScanned: report.FilesScanned,
		FilesChanged: report.FilesChanged,
		Rewrites:     rewrites,
		Status:       status,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("recording move: %w", err)
	}
	return rec.ID, nil
}

// List returns recent moves for a workspace, newest first.
func (s *Store) List(workspace string, limit int) ([]models.Move, error) {
	if limit <= 0 {
		limit = 20
	}
	var moves []models.Move
	err := s.db.
		Where("workspace = ?", workspace).
		Order("created_at DESC").
		Limit(limit).
		Find(&moves).Error
	if err != nil {
		return nil, fmt.Errorf("listing moves: %w", err)
	}
	return moves, nil
}

// Get fetches a single move by operation id.
func (s *Store) Get(id string) (*models.Move, error) {
	var rec models.Move
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading move %s: %w", id, err)
	}
	return &rec, nil
}

// MarkReverted flips an applied move to reverted.
func (s *Store) MarkReverted(id string) error {
	now := time.Now()
	res := s.db.Model(&models.Move{}).
		Where("id = ? AND status = ?", id, models.StatusApplied).
		Updates(map[string]any{"status": models.StatusReverted, "reverted_at": &now})
	if res.Error != nil {
		return fmt.Errorf("marking move reverted: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s is not in applied state", model.ErrNotReverted, id)
	}
	return nil
}
