package model

import "errors"

// Sentinel errors for programmatic checking.
var (
	ErrSourceMissing  = errors.New("source file does not exist")
	ErrDestExists     = errors.New("destination file already exists")
	ErrNoWorkspace    = errors.New("workspace root not found")
	ErrUnknownProject = errors.New("path does not belong to any project")
	ErrWriteRace      = errors.New("file changed on disk during operation")
	ErrNotReverted    = errors.New("operation cannot be reverted")
)

// ErrorCode provides a machine-readable error type for JSON output.
type ErrorCode string

const (
	ECNone           ErrorCode = ""
	ECPathTraversal  ErrorCode = "ERR_PATH_TRAVERSAL"
	ECSourceMissing  ErrorCode = "ERR_SOURCE_MISSING"
	ECDestExists     ErrorCode = "ERR_DEST_EXISTS"
	ECNoWorkspace    ErrorCode = "ERR_NO_WORKSPACE"
	ECUnknownProject ErrorCode = "ERR_UNKNOWN_PROJECT"
	ECWriteRace      ErrorCode = "ERR_WRITE_RACE"
	ECReadError      ErrorCode = "ERR_READ_FILE"
	ECWriteError     ErrorCode = "ERR_WRITE_FILE"
	ECConfigError    ErrorCode = "ERR_CONFIG"
	ECHistoryError   ErrorCode = "ERR_HISTORY"
	ECUnknown        ErrorCode = "ERR_UNKNOWN"
)
