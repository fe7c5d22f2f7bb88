package backend

// ConnectionOverride carries the user's database connection to the server.
// A nil override tells the backend to use its own default connection.
type ConnectionOverride struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	Database     string `json:"database"`
	DatabaseType string `json:"database_type"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string              `json:"message"`
	IncludeSummary bool                `json:"include_summary"`
	Connection     *ConnectionOverride `json:"connection"`
}

// Intent is the backend's classification of the user's question.
type Intent struct {
	Intent   string   `json:"intent"`
	Entities []string `json:"entities"`
	Summary  string   `json:"summary"`
}

// SingleResult is one statement's result set within a multi-statement answer.
type SingleResult struct {
	SQL      string   `json:"sql"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// ChatResult is the backend's answer to a chat query. When MultiResults is
// non-empty it takes display precedence over the single-result fields.
type ChatResult struct {
	SQL          string         `json:"sql"`
	Valid        bool           `json:"valid"`
	Error        string         `json:"error"`
	Columns      []string       `json:"columns"`
	Rows         [][]any        `json:"rows"`
	RowCount     int            `json:"row_count"`
	Summary      string         `json:"summary"`
	Intent       *Intent        `json:"intent,omitempty"`
	MultiResults []SingleResult `json:"multi_results,omitempty"`
}

// HasMultiResults reports whether the multi-statement variant should be shown.
func (r *ChatResult) HasMultiResults() bool {
	return r != nil && len(r.MultiResults) > 0
}

// SyncRequest is the body of POST /api/sync-schema.
type SyncRequest struct {
	Connection *ConnectionOverride `json:"connection"`
	AsyncMode  bool                `json:"async_mode"`
}

// SyncResult is the final outcome of a schema synchronization.
type SyncResult struct {
	Tables          int `json:"tables"`
	Chunks          int `json:"chunks"`
	VectorsUpserted int `json:"vectors_upserted"`
}

// JobStatus enumerates the states a background job moves through.
type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether no further transition can occur.
func (s JobStatus) Terminal() bool { return s == JobDone || s == JobFailed }

// JobHandle identifies a schema sync running in the background.
type JobHandle struct {
	ID      string
	Status  JobStatus
	Message string
}

// SyncOutcome is the tagged union the sync-schema endpoint produces: exactly
// one of Immediate or Job is set. The wire format discriminates only by the
// presence of a job_id field; the client resolves that here so callers never
// have to infer the shape downstream.
type SyncOutcome struct {
	Immediate *SyncResult
	Job       *JobHandle
}

// SyncJob is one status snapshot of a background schema sync.
type SyncJob struct {
	JobID  string      `json:"job_id"`
	Status JobStatus   `json:"status"`
	Result *SyncResult `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// EvaluationRecord is one benchmark question's scores. Score pointers are nil
// when the metric could not be computed for that question.
type EvaluationRecord struct {
	Question          string   `json:"question"`
	GeneratedSQL      string   `json:"generated_sql"`
	ExecutionSuccess  bool     `json:"execution_success"`
	Faithfulness      *float64 `json:"faithfulness"`
	AnswerRelevancy   *float64 `json:"answer_relevancy"`
	ContextPrecision  *float64 `json:"context_precision"`
	ContextRecall     *float64 `json:"context_recall"`
	ExecutionAccuracy *float64 `json:"execution_accuracy"`
	Error             string   `json:"error,omitempty"`
}

// EvaluationSummary aggregates a full benchmark run.
type EvaluationSummary struct {
	N                    int                `json:"n"`
	FaithfulnessAvg      float64            `json:"faithfulness_avg"`
	AnswerRelevancyAvg   float64            `json:"answer_relevancy_avg"`
	ContextPrecisionAvg  float64            `json:"context_precision_avg"`
	ContextRecallAvg     float64            `json:"context_recall_avg"`
	ExecutionAccuracyAvg float64            `json:"execution_accuracy_avg"`
	Results              []EvaluationRecord `json:"results"`
}
