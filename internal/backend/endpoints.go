// Package backend implements the typed HTTP client for the querychat service.
// It covers the four operations the CLI drives: chat queries, schema
// synchronization (immediate or as a polled background job), job status
// lookups, and benchmark evaluation runs.
package backend

// Endpoints contains the REST API endpoint paths.
type Endpoints struct {
	Chat       string `json:"chat"`        // e.g., "/api/chat"
	SyncSchema string `json:"sync_schema"` // e.g., "/api/sync-schema"
	SyncStatus string `json:"sync_status"` // e.g., "/api/sync-status"
	Evaluate   string `json:"evaluate"`    // e.g., "/api/evaluate"
	Health     string `json:"health"`      // e.g., "/health"
}

// DefaultEndpoints returns the paths served by the reference backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Chat:       "/api/chat",
		SyncSchema: "/api/sync-schema",
		SyncStatus: "/api/sync-status",
		Evaluate:   "/api/evaluate",
		Health:     "/health",
	}
}
