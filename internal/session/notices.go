// Package session owns all mutable conversation state and is the single
// point of mutation for it. Each user intent has one handler; handlers guard
// themselves with per-kind busy flags, convert every failure into
// user-visible state, and release their flag on every exit path.
package session

import "querychat/cli/internal/backend"

// NoticeKind enumerates the out-of-band notices handlers emit for rendering.
type NoticeKind string

const (
	// NoticeSyncCompleted reports a finished schema sync with its counts.
	NoticeSyncCompleted NoticeKind = "sync_completed"
	// NoticeSyncFailed reports a failed schema sync with the failure text.
	NoticeSyncFailed NoticeKind = "sync_failed"
	// NoticeEvalCompleted reports a finished benchmark run.
	NoticeEvalCompleted NoticeKind = "eval_completed"
	// NoticeEvalFailed reports a failed benchmark run with the failure text.
	NoticeEvalFailed NoticeKind = "eval_failed"
)

// Notice is a one-shot event for the presentation layer. Only a subset of
// fields is set depending on Kind.
type Notice struct {
	Kind NoticeKind

	// Message carries failure text for the *_failed kinds.
	Message string

	// Sync carries the counts for NoticeSyncCompleted.
	Sync *backend.SyncResult
}

// Notifier receives notices from handlers. Implementations must be safe to
// call from multiple goroutines.
type Notifier func(Notice)
