// Package types provides shared types used across the rekonime codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

// ValidationError represents a problem found in a catalog record.
type ValidationError struct {
	File     string
	Record   int    // 0-based position in the file, -1 for file-level problems
	ID       string // series id when known
	Message  string
	Severity string // error, warning, info
	Source   string // schema, loader
}

// Problem sources.
const (
	SourceSchema = "schema" // CUE record schema
	SourceLoader = "loader" // normalization and dedupe
)

// Severity level constants.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Output format constants.
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Formats lists every supported report format.
var Formats = []string{FormatConsole, FormatJSON, FormatMarkdown}
