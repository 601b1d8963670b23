package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/parser"
)

// Request is one document to parse. Either Data (raw file bytes, decoded by
// the reader chosen from Filename) or Blocks (an already decoded block
// stream) is set.
type Request struct {
	Filename string
	Family   string
	Data     []byte
	Blocks   []model.Block
	Override *metadata.Override
}

// Worker reads and classifies documents.
type Worker struct {
	families *Families
	readers  parser.Options
	stats    *ParseStats
	log      *slog.Logger
}

func NewWorker(families *Families, readers parser.Options, stats *ParseStats, log *slog.Logger) *Worker {
	return &Worker{
		families: families,
		readers:  readers,
		stats:    stats,
		log:      log,
	}
}

// Process runs the parse for a queued job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "family", job.Family, "filename", job.Filename)
	doc, err := w.run(ctx, job.Request(), job)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
		return
	}
	job.SetResult(doc)
	job.SetStatus(StatusCompleted, "done")
	log.Info("parse complete", "divisions", job.Snapshot().Progress.Divisions)
}

// Parse runs a request synchronously.
func (w *Worker) Parse(ctx context.Context, req Request) (*doctree.Document, error) {
	return w.run(ctx, req, nil)
}

// run reads and classifies a request, reporting phases to job when it is
// not nil.
func (w *Worker) run(ctx context.Context, req Request, job *Job) (doc *doctree.Document, err error) {
	start := time.Now()
	blocks := req.Blocks
	defer func() {
		w.stats.Record(req.Family, time.Since(start), len(blocks), err)
	}()

	if blocks == nil {
		if job != nil {
			job.SetStatus(StatusReading, "reading")
		}
		blocks, err = w.read(req)
		if err != nil {
			return nil, err
		}
	}
	if job != nil {
		job.SetBlocks(len(blocks))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if job != nil {
		job.SetStatus(StatusClassifying, "classifying")
	}
	return w.families.Parse(req.Family, blocks, req.Override)
}

func (w *Worker) read(req Request) ([]model.Block, error) {
	r, err := parser.ForFile(req.Filename, w.readers)
	if err != nil {
		return nil, err
	}
	blocks, err := r.Read(bytes.NewReader(req.Data))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Filename, err)
	}
	return blocks, nil
}
