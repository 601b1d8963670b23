package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lawtree/internal/chunker"
	"github.com/dgallion1/lawtree/internal/classify"
	"github.com/dgallion1/lawtree/internal/doctree"
	"github.com/dgallion1/lawtree/internal/metadata"
	"github.com/dgallion1/lawtree/internal/model"
	"github.com/dgallion1/lawtree/internal/parser"
	"github.com/dgallion1/lawtree/internal/pipeline"
)

// requestError is a client error with the status it maps to.
type requestError struct {
	msg  string
	code int
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...), code: http.StatusBadRequest}
}

// blocksRequest is the JSON form of a parse request: an already decoded
// block stream plus optional metadata.
type blocksRequest struct {
	Family   string             `json:"family"`
	Filename string             `json:"filename"`
	Blocks   json.RawMessage    `json:"blocks"`
	Meta     *metadata.Override `json:"meta"`
}

// readRequest builds a parse request from either a multipart upload (file,
// family, meta) or a JSON block stream.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return s.readBlocksRequest(r)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return pipeline.Request{}, badRequest("invalid multipart form: %s", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return pipeline.Request{}, badRequest("file is required: %s", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return pipeline.Request{}, badRequest("unsupported file type: %s", filepath.Ext(filename))
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Request{}, &requestError{msg: "failed to read file", code: http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Request{}, &requestError{
			msg:  fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes),
			code: http.StatusRequestEntityTooLarge,
		}
	}

	req := pipeline.Request{Filename: filename, Family: s.family(r.FormValue("family")), Data: data}
	req.Override, err = s.readOverride(r)
	if err != nil {
		return pipeline.Request{}, err
	}
	return req, nil
}

func (s *Server) readBlocksRequest(r *http.Request) (pipeline.Request, error) {
	var in blocksRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return pipeline.Request{}, badRequest("invalid json body: %s", err)
	}
	if len(in.Blocks) == 0 {
		return pipeline.Request{}, badRequest("blocks is required")
	}
	blocks, err := model.DecodeBlocks(in.Blocks)
	if err != nil {
		return pipeline.Request{}, badRequest("%s", err)
	}
	if blocks == nil {
		blocks = []model.Block{}
	}
	if in.Meta != nil {
		if err := in.Meta.Validate(); err != nil {
			return pipeline.Request{}, err
		}
	}
	return pipeline.Request{
		Filename: sanitizeFilename(in.Filename),
		Family:   s.family(in.Family),
		Blocks:   blocks,
		Override: in.Meta,
	}, nil
}

// readOverride reads the optional "meta" form part, given either as an
// uploaded file or as a plain field.
func (s *Server) readOverride(r *http.Request) (*metadata.Override, error) {
	var src io.Reader
	if f, _, err := r.FormFile("meta"); err == nil {
		defer f.Close()
		src = f
	} else if v := r.FormValue("meta"); v != "" {
		src = strings.NewReader(v)
	} else {
		return nil, nil
	}
	o, err := metadata.Load(src)
	if err != nil {
		return nil, badRequest("invalid meta: %s", err)
	}
	return o, nil
}

func (s *Server) family(v string) string {
	if v == "" {
		return s.cfg.DefaultFamily
	}
	return strings.ToLower(v)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.viewFunc(r.URL.Query().Get("view"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.orchestrator.Parse(r.Context(), req)
	if err != nil {
		s.log.Error("parse failed", "filename", req.Filename, "family", req.Family, "error", err)
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view(doc))
}

// viewFunc selects what a parse response carries: the whole document, its
// outline, or its chunks.
func (s *Server) viewFunc(name string) (func(*doctree.Document) any, error) {
	switch name {
	case "", "document":
		return func(doc *doctree.Document) any { return doc }, nil
	case "outline":
		return func(doc *doctree.Document) any {
			return map[string]any{"meta": doc.Meta, "outline": doctree.Outline(doc)}
		}, nil
	case "chunks":
		cfg := chunker.DefaultConfig()
		cfg.ChunkSize = s.cfg.DefaultChunkSize
		cfg.ChunkOverlap = s.cfg.DefaultChunkOverlap
		return func(doc *doctree.Document) any {
			return map[string]any{"meta": doc.Meta, "chunks": chunker.ChunkDocument(doc, cfg)}
		}, nil
	}
	return nil, badRequest("unknown view %q", name)
}

// writeError maps an error to its HTTP status: client input errors are 4xx,
// documents missing a mandatory anchor are 422, anything else is 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	var valErr *metadata.ValidationError
	switch {
	case errors.As(err, &reqErr):
		jsonError(w, reqErr.msg, reqErr.code)
	case errors.As(err, &valErr):
		jsonError(w, valErr.Error(), http.StatusBadRequest)
	case errors.Is(err, classify.ErrMissingAnchor):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, pipeline.ErrUnknownFamily):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, pipeline.ErrStopped):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
