package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lawtree/internal/config"
	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/pipeline"
)

const judgmentText = `Neutral Citation Number: [2022] EWCA Civ 733
IN THE COURT OF APPEAL (CIVIL DIVISION)
Approved Judgment
1. This appeal concerns a contract for the supply of goods.
2. For these reasons the appeal is dismissed.
`

const apiKey = "test-key"

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		APIKey:                          apiKey,
		WorkerCount:                     1,
		MaxQueueSize:                    4,
		MaxUploadBytes:                  1 << 20,
		JobTTL:                          time.Hour,
		DefaultFamily:                   "judgment",
		JudgmentCrossHeadingMinPosition: 3,
		HeaderScanLimit:                 120,
		DefaultChunkSize:                1500,
		DefaultChunkOverlap:             200,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, log)
	return NewServer(orch, log, cfg), orch
}

func upload(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth_NoAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_Rejected(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, header := range []string{"", "Bearer wrong", "Basic " + apiKey} {
		req := httptest.NewRequest(http.MethodGet, "/api/stats/parse", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestParse_Upload(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse", "judgment.txt", judgmentText, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Family string `json:"family"`
		Meta   struct {
			Citation string `json:"citation"`
			URI      string `json:"uri"`
		} `json:"meta"`
		Body []json.RawMessage `json:"body"`
	}
	decode(t, rec, &out)
	if out.Family != "judgment" || out.Meta.Citation != "[2022] EWCA Civ 733" || out.Meta.URI != "ewca/civ/2022/733" {
		t.Errorf("unexpected document identity %+v", out)
	}
	if len(out.Body) != 2 {
		t.Errorf("expected 2 body divisions, got %d", len(out.Body))
	}
}

func TestParse_Views(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse?view=outline", "judgment.txt", judgmentText, nil))
	var outline struct {
		Outline []struct {
			Path []string `json:"path"`
			Kind string   `json:"kind"`
		} `json:"outline"`
	}
	decode(t, rec, &outline)
	if len(outline.Outline) != 2 || outline.Outline[0].Kind != "Paragraph" {
		t.Errorf("unexpected outline %+v", outline.Outline)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse?view=chunks", "judgment.txt", judgmentText, nil))
	var chunks struct {
		Chunks []struct {
			Breadcrumb []string `json:"breadcrumb"`
			Text       string   `json:"text"`
		} `json:"chunks"`
	}
	decode(t, rec, &chunks)
	if len(chunks.Chunks) != 3 || chunks.Chunks[0].Breadcrumb[0] != "Header" {
		t.Errorf("expected header plus two paragraph chunks, got %+v", chunks.Chunks)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse?view=xml", "judgment.txt", judgmentText, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown view, got %d", rec.Code)
	}
}

func TestParse_ErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		want     int
	}{
		{"missing header", "notes.txt", "no structure here\n", nil, http.StatusUnprocessableEntity},
		{"missing bill title", "notes.txt", "no structure here\n", map[string]string{"family": "bill"}, http.StatusUnprocessableEntity},
		{"bad override date", "judgment.txt", judgmentText, map[string]string{"meta": "date: 27/05/2022"}, http.StatusBadRequest},
		{"unknown override field", "judgment.txt", judgmentText, map[string]string{"meta": "judge: Smith"}, http.StatusBadRequest},
		{"unknown family", "judgment.txt", judgmentText, map[string]string{"family": "statute"}, http.StatusBadRequest},
		{"unsupported type", "data.csv", "a,b", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, upload(t, "/api/parse", tt.filename, tt.content, tt.fields))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d: %s", tt.name, tt.want, rec.Code, rec.Body.String())
		}
		var body map[string]string
		decode(t, rec, &body)
		if body["error"] == "" {
			t.Errorf("%s: expected error message", tt.name)
		}
	}
}

func TestParse_OverrideWins(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/parse", "judgment.txt", judgmentText, map[string]string{"meta": "name: Brown v Acme\ndate: 2022-05-27\n"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Meta struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"meta"`
	}
	decode(t, rec, &out)
	if out.Meta.Name != "Brown v Acme" || out.Meta.Date != "2022-05-27" {
		t.Errorf("expected override metadata, got %+v", out.Meta)
	}
}

func TestParse_JSONBlocks(t *testing.T) {
	srv, _ := newTestServer(t)
	line := func(s string) model.Block { return &model.TextLine{Contents: []model.Inline{&model.Text{Value: s}}} }
	blocks, err := json.Marshal([]model.Block{
		line("[2023] UKSC 12"),
		line("JUDGMENT"),
		&model.NumberedLine{Number: &model.Text{Value: "1."}, TextLine: model.TextLine{Contents: []model.Inline{&model.Text{Value: "Introduction."}}}},
	})
	if err != nil {
		t.Fatalf("marshal blocks: %v", err)
	}
	body, _ := json.Marshal(map[string]any{"family": "judgment", "blocks": json.RawMessage(blocks)})
	req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"citation":"[2023] UKSC 12"`) {
		t.Errorf("expected citation in response, got %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"blocks":[{"type":"video"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad block type, got %d", rec.Code)
	}
}

func TestJobs_SubmitAndPoll(t *testing.T) {
	srv, orch := newTestServer(t)
	orch.Start(context.Background())
	defer orch.Stop()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/jobs", "judgment.txt", judgmentText, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &accepted)
	if accepted.PollURL != "/api/jobs/"+accepted.JobID {
		t.Errorf("unexpected poll url %q", accepted.PollURL)
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+apiKey)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		var snap pipeline.JobSnapshot
		decode(t, get(accepted.PollURL), &snap)
		if snap.Status == pipeline.StatusCompleted {
			break
		}
		if snap.Status == pipeline.StatusFailed || time.Now().After(deadline) {
			t.Fatalf("job did not complete: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = get(accepted.PollURL + "/result?view=outline")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"outline"`) {
		t.Errorf("expected outline result, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := get("/api/jobs/does-not-exist"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}

	var stats struct {
		Stats pipeline.StatsSnapshot `json:"stats"`
	}
	decode(t, get("/api/stats/parse"), &stats)
	if stats.Stats.Count != 1 {
		t.Errorf("expected one parse recorded, got %+v", stats.Stats)
	}
}

func TestJobs_QueueFull(t *testing.T) {
	srv, orch := newTestServer(t)
	defer orch.Stop()
	// Workers are not started, so the queue fills.
	for i := range 4 {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, upload(t, "/api/jobs", "judgment.txt", judgmentText, nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("submit %d: expected 202, got %d", i, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, upload(t, "/api/jobs", "judgment.txt", judgmentText, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when queue is full, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd.txt": "passwd.txt",
		"judgment.docx":        "judgment.docx",
		"":                     "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
