package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ssargent/mimir/pkg/codec"
	"github.com/ssargent/mimir/pkg/dump"
	"github.com/ssargent/mimir/pkg/table"
)

// Server exposes one embedding table over HTTP. K and V are fixed by the
// serving configuration; the serve command's dispatch table instantiates the
// right pair.
type Server[K table.Key, V codec.Element] struct {
	table  *table.Table[K, V]
	config ServerConfig
	logger *slog.Logger
}

// NewServer creates an API server around an open table
func NewServer[K table.Key, V codec.Element](tbl *table.Table[K, V], config ServerConfig, logger *slog.Logger) *Server[K, V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server[K, V]{table: tbl, config: config, logger: logger}
}

// sendTableError maps table/dump error kinds onto HTTP status codes.
func (s *Server[K, V]) sendTableError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("table operation failed", "operation", op, "error", err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, table.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, table.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, dump.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dump.ErrMalformed), errors.Is(err, dump.ErrUnexpectedEnd),
		errors.Is(err, codec.ErrCorruptRecord):
		status = http.StatusUnprocessableEntity
	}
	sendError(w, err.Error(), status)
}

func (s *Server[K, V]) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "ok"})
}

func (s *Server[K, V]) handleFind(w http.ResponseWriter, r *http.Request) {
	var req FindRequest[K, V]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	values, err := s.table.Find(req.Keys, req.Defaults)
	if err != nil {
		s.sendTableError(w, "find", err)
		return
	}
	sendSuccess(w, FindResponse[V]{Values: values})
}

func (s *Server[K, V]) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest[K, V]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.table.Insert(req.Keys, req.Values); err != nil {
		s.sendTableError(w, "insert", err)
		return
	}
	sendSuccess(w, map[string]int{"inserted": len(req.Keys)})
}

func (s *Server[K, V]) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest[K]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.table.Remove(req.Keys); err != nil {
		s.sendTableError(w, "remove", err)
		return
	}
	sendSuccess(w, map[string]int{"removed": len(req.Keys)})
}

func (s *Server[K, V]) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.table.Clear(); err != nil {
		s.sendTableError(w, "clear", err)
		return
	}
	sendSuccess(w, map[string]string{"namespace": s.table.Namespace()})
}

func (s *Server[K, V]) handleExport(w http.ResponseWriter, r *http.Request) {
	var req DumpRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := s.table.Export(req.Path); err != nil {
		s.sendTableError(w, "export", err)
		return
	}
	s.logger.Info("exported namespace", "namespace", s.table.Namespace(), "path", req.Path)
	sendSuccess(w, map[string]string{"namespace": s.table.Namespace()})
}

func (s *Server[K, V]) handleImport(w http.ResponseWriter, r *http.Request) {
	var req DumpRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := s.table.Import(req.Path); err != nil {
		s.sendTableError(w, "import", err)
		return
	}
	s.logger.Info("imported namespace", "namespace", s.table.Namespace(), "path", req.Path)
	sendSuccess(w, map[string]string{"namespace": s.table.Namespace()})
}

func (s *Server[K, V]) handleStats(w http.ResponseWriter, r *http.Request) {
	approx, err := s.table.ApproximateSize()
	if err != nil {
		s.sendTableError(w, "stats", err)
		return
	}
	sendSuccess(w, StatsResponse{
		Namespace:       s.table.Namespace(),
		RowWidth:        s.table.RowWidth(),
		Size:            s.table.Size(),
		ApproximateSize: approx,
	})
}
