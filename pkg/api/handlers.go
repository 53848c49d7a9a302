package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/logging"
	"github.com/ssargent/csvmap/pkg/query"
	"github.com/ssargent/csvmap/pkg/schema"
	"github.com/ssargent/csvmap/pkg/storage"
)

// maximum accepted request body
const maxBodyBytes = 32 << 20

// Server holds the API server state
type Server struct {
	service *RecordService
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(service *RecordService, config ServerConfig) *Server {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		service: service,
		config:  config,
		metrics: config.Metrics,
		logger:  logger,
	}
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSchemaNotFound), errors.Is(err, storage.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, codec.ErrFieldCountMismatch),
		errors.Is(err, codec.ErrUnsupportedFieldType),
		errors.Is(err, ErrInvalidRecord),
		errors.Is(err, query.ErrInvalidQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	sendError(w, err.Error(), code)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, http.StatusOK, nil
}

// handleHealth reports service health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListSchemas lists the registered schemas with their archive counts
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Schemas()
	infos := make([]SchemaInfo, 0, len(defs))
	for _, def := range defs {
		info := SchemaInfo{Name: def.Name, Fields: def.Fields}
		if s.service.archive != nil {
			n, err := s.service.Count(def.Name)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			info.Archived = n
		}
		infos = append(infos, info)
	}
	sendSuccess(w, infos)
}

// handleSerialize encodes JSON records as a text table
func (s *Server) handleSerialize(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, code, err := readBody(w, r)
	if err != nil {
		sendError(w, err.Error(), code)
		return
	}

	var req SerializeRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	text, err := s.service.Serialize(name, req.Records)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, SerializeResponse{Text: text})
}

// handleDeserialize decodes a text table body into JSON records
func (s *Server) handleDeserialize(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, code, err := readBody(w, r)
	if err != nil {
		sendError(w, err.Error(), code)
		return
	}

	records, err := s.service.Deserialize(name, string(body))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.service.JSONRecords(name, records)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, RecordsResponse{Count: len(out), Records: out})
}

// handleAppendRecords validates a text table body and archives its records
func (s *Server) handleAppendRecords(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, code, err := readBody(w, r)
	if err != nil {
		sendError(w, err.Error(), code)
		return
	}

	ids, err := s.service.Import(name, string(body))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := AppendResponse{Count: len(ids), IDs: make([]string, len(ids))}
	for i, id := range ids {
		resp.IDs[i] = id.String()
	}
	sendSuccess(w, resp)
}

// handleExportRecords returns the archived records of a schema as a text
// table. Each "where" query parameter adds a condition such as score>=9.5.
func (s *Server) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	queries, err := query.ParseAll(r.URL.Query()["where"])
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := s.service.Export(chi.URLParam(r, "name"), queries...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendText(w, text)
}

// handleGetRecord returns one archived record
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	line, rec, err := s.service.Get(name, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	jsonRecs, err := s.service.JSONRecords(name, []schema.Record{rec})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, RecordResponse{ID: id.String(), Line: line, Record: jsonRecs[0]})
}

// handleDeleteRecord removes one archived record
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.service.Delete(chi.URLParam(r, "name"), id); err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "Record deleted successfully"})
}

// updateArchiveMetrics refreshes the archived record gauges
func (s *Server) updateArchiveMetrics() {
	if s.metrics == nil || s.service.archive == nil {
		return
	}
	for _, def := range s.service.Schemas() {
		n, err := s.service.Count(def.Name)
		if err != nil {
			s.logger.Warn("failed to count archived records", "schema", def.Name, "error", err)
			continue
		}
		s.metrics.UpdateArchivedRecords(def.Name, n)
	}
}

// startMetricsUpdater periodically updates archive metrics until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	s.updateArchiveMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateArchiveMetrics()
		}
	}
}
