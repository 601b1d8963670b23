package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
	"github.com/google/uuid"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusReading     JobStatus = "reading"
	StatusClassifying JobStatus = "classifying"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single document parse.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Family   string `json:"family"`
	Filename string `json:"filename"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	blocks   []model.Block
	override *metadata.Override
	result   *doctree.Document
	errors   []string
}

// Progress summarizes what a job has produced so far.
type Progress struct {
	Blocks    int      `json:"blocks"`
	Divisions int      `json:"divisions"`
	Errors    []string `json:"errors"`
}

// NewJob creates a queued job for a request. Raw file bytes are hashed so
// that clients can recognize resubmissions.
func NewJob(req Request) *Job {
	now := time.Now()
	job := &Job{
		ID:        NewJobID(),
		Family:    req.Family,
		Filename:  req.Filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  req.Data,
		blocks:    req.Blocks,
		override:  req.Override,
	}
	if len(req.Data) > 0 {
		job.ContentHash = ContentHashHex(req.Data)
	}
	return job
}

// NewJobID returns a random job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// Request returns the parse request the job was created from.
func (j *Job) Request() Request {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Request{Filename: j.Filename, Family: j.Family, Data: j.fileData, Blocks: j.blocks, Override: j.override}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of jobs held.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetBlocks records the block count read from the input.
func (j *Job) SetBlocks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Blocks = n
	j.UpdatedAt = time.Now()
}

// SetResult stores the parsed document and releases the raw input.
func (j *Job) SetResult(doc *doctree.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = doc
	j.fileData = nil
	j.blocks = nil
	divisions := 0
	for _, n := range doc.Stats() {
		divisions += n
	}
	j.Progress.Divisions = divisions
	j.UpdatedAt = time.Now()
}

// Result returns the parsed document, or nil until the job completes.
func (j *Job) Result() *doctree.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string            `json:"job_id"`
	Family      string            `json:"family"`
	Filename    string            `json:"filename"`
	Status      JobStatus         `json:"status"`
	Phase       string            `json:"phase"`
	Progress    Progress          `json:"progress"`
	ContentHash string            `json:"content_hash,omitempty"`
	Meta        *doctree.Metadata `json:"meta,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:       j.ID,
		Family:   j.Family,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			Blocks:    j.Progress.Blocks,
			Divisions: j.Progress.Divisions,
			Errors:    append([]string{}, errs...),
		},
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.result != nil {
		meta := j.result.Meta
		snap.Meta = &meta
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
