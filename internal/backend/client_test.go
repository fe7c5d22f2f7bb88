package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qerrors "querychat/cli/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, DefaultEndpoints())
}

func TestChatDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Message != "How many users are there?" {
			t.Errorf("message = %q", req.Message)
		}
		if !req.IncludeSummary {
			t.Error("include_summary not set")
		}
		json.NewEncoder(w).Encode(ChatResult{
			SQL:      "SELECT COUNT(*) FROM users",
			Valid:    true,
			Columns:  []string{"count"},
			Rows:     [][]any{{float64(42)}},
			RowCount: 1,
		})
	})

	res, err := c.Chat(context.Background(), ChatRequest{
		Message:        "How many users are there?",
		IncludeSummary: true,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.SQL != "SELECT COUNT(*) FROM users" || !res.Valid || res.RowCount != 1 {
		t.Errorf("Chat() = %+v", res)
	}
}

func TestChatConnectionOmittedAsNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if string(raw["connection"]) != "null" {
			t.Errorf("connection = %s, want null", raw["connection"])
		}
		json.NewEncoder(w).Encode(ChatResult{Valid: true})
	})

	if _, err := c.Chat(context.Background(), ChatRequest{Message: "hi"}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}

func TestRequestErrorCarriesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("schema ingestion exploded"))
	})

	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if qerrors.KindOf(err) != qerrors.RequestFailed {
		t.Errorf("kind = %v, want RequestFailed", qerrors.KindOf(err))
	}
	if got := qerrors.UserMessage(err); got != "schema ingestion exploded" {
		t.Errorf("UserMessage() = %q, want raw body", got)
	}
}

func TestTransportErrorOnUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore
	c := New(srv.URL, DefaultEndpoints())

	_, err := c.Evaluate(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if qerrors.KindOf(err) != qerrors.TransportFailed {
		t.Errorf("kind = %v, want TransportFailed", qerrors.KindOf(err))
	}
}

func TestSyncSchemaImmediateOutcome(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"tables": 5, "chunks": 120, "vectors_upserted": 120,
		})
	})

	out, err := c.SyncSchema(context.Background(), SyncRequest{})
	if err != nil {
		t.Fatalf("SyncSchema() error = %v", err)
	}
	if out.Job != nil {
		t.Fatalf("unexpected job variant: %+v", out.Job)
	}
	if out.Immediate == nil || out.Immediate.Tables != 5 || out.Immediate.VectorsUpserted != 120 {
		t.Errorf("Immediate = %+v", out.Immediate)
	}
}

func TestSyncSchemaJobOutcome(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if !req.AsyncMode {
			t.Error("async_mode not set")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"job_id": "j1", "status": "running", "message": "poll me",
		})
	})

	out, err := c.SyncSchema(context.Background(), SyncRequest{AsyncMode: true})
	if err != nil {
		t.Fatalf("SyncSchema() error = %v", err)
	}
	if out.Immediate != nil {
		t.Fatalf("unexpected immediate variant: %+v", out.Immediate)
	}
	if out.Job == nil || out.Job.ID != "j1" || out.Job.Status != JobRunning {
		t.Errorf("Job = %+v", out.Job)
	}
}

func TestJobStatusQueryAndDecode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sync-status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("job_id"); got != "j 1" {
			t.Errorf("job_id = %q, want %q", got, "j 1")
		}
		json.NewEncoder(w).Encode(SyncJob{
			JobID:  "j 1",
			Status: JobDone,
			Result: &SyncResult{Tables: 3, Chunks: 10, VectorsUpserted: 10},
		})
	})

	job, err := c.JobStatus(context.Background(), "j 1")
	if err != nil {
		t.Fatalf("JobStatus() error = %v", err)
	}
	if job.Status != JobDone || job.Result == nil || job.Result.Tables != 3 {
		t.Errorf("JobStatus() = %+v", job)
	}
}

func TestEvaluateDecodesSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		score := 0.9
		json.NewEncoder(w).Encode(EvaluationSummary{
			N:               2,
			FaithfulnessAvg: 0.85,
			Results: []EvaluationRecord{
				{Question: "q1", ExecutionSuccess: true, Faithfulness: &score},
				{Question: "q2"},
			},
		})
	})

	sum, err := c.Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if sum.N != 2 || len(sum.Results) != 2 {
		t.Errorf("Evaluate() = %+v", sum)
	}
	if sum.Results[1].Faithfulness != nil {
		t.Error("missing score should stay nil")
	}
}

func TestJobStatusTerminality(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobRunning, false},
		{JobDone, true},
		{JobFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
