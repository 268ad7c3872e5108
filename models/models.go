package models

import (
	"time"

	"gorm.io/datatypes"
)

// Move statuses.
const (
	StatusApplied  = "applied"
	StatusDryRun   = "dry-run"
	StatusReverted = "reverted"
)

// Move represents one recorded move operation.
type Move struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Workspace string `gorm:"type:varchar(512);index"`

	// Workspace-relative paths, sanitized before they were recorded
	Source      string `gorm:"type:varchar(512);not null"`
	Destination string `gorm:"type:varchar(512);not null"`

	// Checksums of the moved file for revert validation
	SourceDigest string `gorm:"type:varchar(40)"` // SHA1 at move time
	MovedDigest  string `gorm:"type:varchar(40)"` // SHA1 after rebase

	// Rewrite accounting
	FilesScanned int            `gorm:"default:0"`
	FilesChanged int            `gorm:"default:0"`
	Rewrites     datatypes.JSON `gorm:"type:jsonb"` // per-file results

	// Status tracking
	Status     string    `gorm:"type:varchar(20);default:'applied';index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	RevertedAt *time.Time
}
