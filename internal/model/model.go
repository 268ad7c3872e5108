package model

// Result holds the outcome of rewriting a single file during a move.
type Result struct {
	File          string    `json:"file"`
	Success       bool      `json:"success"`
	ModifiedCount int       `json:"modified_count"`
	ChangedBytes  int       `json:"changed_bytes"`
	Error         string    `json:"error,omitempty"`
	ErrorCode     ErrorCode `json:"error_code,omitempty"`
	OriginalSHA1  string    `json:"original_sha1,omitempty"`
	ModifiedSHA1  string    `json:"modified_sha1,omitempty"`
	Diff          string    `json:"diff,omitempty"`
	Changes       []Change  `json:"changes,omitempty"`
}

// Change represents a single specifier rewrite within a file.
type Change struct {
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	Start     int    `json:"start"` // byte offsets
	End       int    `json:"end"`
	Original  string `json:"original"`
	New       string `json:"new"`
}

// MoveReport is the top-level outcome of a move operation.
type MoveReport struct {
	SchemaVersion int      `json:"schema_version"`
	ToolVersion   string   `json:"tool_version"`
	OperationID   string   `json:"operation_id,omitempty"`
	Source        string   `json:"source"`
	Destination   string   `json:"destination"`
	DryRun        bool     `json:"dry_run"`
	FilesScanned  int      `json:"files_scanned"`
	FilesChanged  int      `json:"files_changed"`
	Results       []Result `json:"results,omitempty"`
}

const (
	CurrentSchemaVersion = 1
	CurrentToolVersion   = "0.1.0"
)
