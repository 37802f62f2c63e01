// Package constants provides shared constants used across the codebase.
package constants

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (20MB)
	MaxUploadSize = 20 << 20
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history entries to return
	DefaultHistoryLimit = 20

	// MaxHistoryLimit caps the number of history entries per request
	MaxHistoryLimit = 200

	// RecentLookupsLimit is the number of names remembered in the visitor session cookie
	RecentLookupsLimit = 5
)
