package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"querychat/cli/internal/backend"
	"querychat/cli/internal/config"
	qerrors "querychat/cli/internal/errors"
	"querychat/cli/internal/poller"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation. Messages are append-only and
// never mutated after they are added.
type Message struct {
	Role     Role
	Content  string
	SQL      string
	Response *backend.ChatResult
}

// Service is the slice of the backend client the session drives.
type Service interface {
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResult, error)
	SyncSchema(ctx context.Context, req backend.SyncRequest) (*backend.SyncOutcome, error)
	JobStatus(ctx context.Context, jobID string) (*backend.SyncJob, error)
	Evaluate(ctx context.Context) (*backend.EvaluationSummary, error)
}

// Session holds the conversation, the current result, evaluation state, the
// connection profile and the three per-operation busy flags. All fields are
// guarded by mu; handlers are safe to invoke from separate goroutines, and
// same-kind re-entrant invocations are rejected by the busy flags.
type Session struct {
	svc    Service
	poll   *poller.Poller
	notify Notifier

	mu             sync.Mutex
	messages       []Message
	currentResult  *backend.ChatResult
	evaluation     *backend.EvaluationSummary
	evalErr        string
	profile        config.Profile
	showConnection bool

	chatBusy bool
	syncBusy bool
	evalBusy bool
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier routes handler notices to the given sink.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notify = n }
}

// WithProfile seeds the in-memory connection profile.
func WithProfile(p config.Profile) Option {
	return func(s *Session) { s.profile = p }
}

// WithSleep replaces the poll-loop suspension; tests pass a virtual clock.
func WithSleep(sleep poller.SleepFunc) Option {
	return func(s *Session) { s.poll.WithSleep(sleep) }
}

// New creates a session over the given backend service. The profile defaults
// to the persisted one and notices are dropped unless a notifier is set.
func New(svc Service, opts ...Option) *Session {
	s := &Session{
		svc:     svc,
		poll:    poller.New(svc.JobStatus),
		notify:  func(Notice) {},
		profile: config.Load(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitMessage sends a chat query. Whitespace-only input and re-entrant
// calls are silent no-ops. The busy flag is released on every exit path.
func (s *Session) SubmitMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !s.acquire(&s.chatBusy) {
		return
	}
	defer s.release(&s.chatBusy)

	s.mu.Lock()
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
	s.currentResult = nil
	conn := overrideFor(s.profile)
	s.mu.Unlock()

	res, err := s.svc.Chat(ctx, backend.ChatRequest{
		Message:        text,
		IncludeSummary: true,
		Connection:     conn,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.messages = append(s.messages, Message{
			Role:    RoleAssistant,
			Content: "Error: " + qerrors.UserMessage(err),
		})
		return
	}
	s.currentResult = res
	s.messages = append(s.messages, Message{
		Role:     RoleAssistant,
		Content:  assistantText(res),
		SQL:      res.SQL,
		Response: res,
	})
}

// assistantText picks the display text for an assistant message: the server
// summary when present, else the server error, else a synthesized sentence.
func assistantText(res *backend.ChatResult) string {
	if res.Summary != "" {
		return res.Summary
	}
	if res.Error != "" {
		return res.Error
	}
	if res.Valid {
		return fmt.Sprintf("Returned %d row(s).", res.RowCount)
	}
	return "Invalid SQL."
}

// SyncSchema triggers a schema synchronization. In async mode the backend
// answers with a job handle and the poll loop drives it to a terminal state.
// Re-entrant calls while a sync is in flight are silent no-ops.
func (s *Session) SyncSchema(ctx context.Context, asyncMode bool) {
	if !s.acquire(&s.syncBusy) {
		return
	}
	defer s.release(&s.syncBusy)

	s.mu.Lock()
	conn := overrideFor(s.profile)
	s.mu.Unlock()

	outcome, err := s.svc.SyncSchema(ctx, backend.SyncRequest{
		Connection: conn,
		AsyncMode:  asyncMode,
	})
	if err != nil {
		s.notify(Notice{Kind: NoticeSyncFailed, Message: qerrors.UserMessage(err)})
		return
	}

	result := outcome.Immediate
	if outcome.Job != nil {
		result, err = s.poll.Wait(ctx, outcome.Job.ID)
		if err != nil {
			s.notify(Notice{Kind: NoticeSyncFailed, Message: qerrors.UserMessage(err)})
			return
		}
	}
	s.notify(Notice{Kind: NoticeSyncCompleted, Sync: result})
}

// RunEvaluation triggers a full benchmark run. The stored summary is replaced
// wholesale on success; on failure it is cleared so no stale metrics linger.
func (s *Session) RunEvaluation(ctx context.Context) {
	if !s.acquire(&s.evalBusy) {
		return
	}
	defer s.release(&s.evalBusy)

	s.mu.Lock()
	s.evalErr = ""
	s.mu.Unlock()

	sum, err := s.svc.Evaluate(ctx)

	s.mu.Lock()
	if err != nil {
		s.evaluation = nil
		s.evalErr = qerrors.UserMessage(err)
		s.mu.Unlock()
		s.notify(Notice{Kind: NoticeEvalFailed, Message: qerrors.UserMessage(err)})
		return
	}
	s.evaluation = sum
	s.mu.Unlock()
	s.notify(Notice{Kind: NoticeEvalCompleted})
}

// UpdateConnection replaces the connection profile and persists the
// non-secret fields. Persistence failures are deliberately swallowed here at
// the orchestration layer; the store itself still reports them.
func (s *Session) UpdateConnection(p config.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	_ = config.Save(p)
}

// ToggleConnectionPanel flips the connection panel visibility.
func (s *Session) ToggleConnectionPanel() {
	s.mu.Lock()
	s.showConnection = !s.showConnection
	s.mu.Unlock()
}

// overrideFor builds the connection override sent to the backend. When no
// database is configured the override is omitted entirely, signaling the
// backend to use its own default connection. Called with mu held.
func overrideFor(p config.Profile) *backend.ConnectionOverride {
	if p.Database == "" {
		return nil
	}
	return &backend.ConnectionOverride{
		Host:         p.Host,
		Port:         p.Port,
		User:         p.User,
		Password:     p.Password,
		Database:     p.Database,
		DatabaseType: string(p.Type),
	}
}

// acquire sets the flag unless it is already set. It is the per-kind
// mutual-exclusion gate: at most one chat, one sync and one evaluation may
// be in flight, independently of each other.
func (s *Session) acquire(flag *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

// release clears the flag. Handlers defer it immediately after acquiring so
// no exit path can leave an operation stuck busy.
func (s *Session) release(flag *bool) {
	s.mu.Lock()
	*flag = false
	s.mu.Unlock()
}

// Snapshot is a read-only copy of the observable session state.
type Snapshot struct {
	Messages       []Message
	CurrentResult  *backend.ChatResult
	Evaluation     *backend.EvaluationSummary
	EvalError      string
	Profile        config.Profile
	ShowConnection bool
	ChatBusy       bool
	SyncBusy       bool
	EvalBusy       bool
}

// Snapshot returns a copy of the current state for rendering. The message
// slice is copied; entries are never mutated after append, so sharing them
// is safe.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		Messages:       msgs,
		CurrentResult:  s.currentResult,
		Evaluation:     s.evaluation,
		EvalError:      s.evalErr,
		Profile:        s.profile,
		ShowConnection: s.showConnection,
		ChatBusy:       s.chatBusy,
		SyncBusy:       s.syncBusy,
		EvalBusy:       s.evalBusy,
	}
}
