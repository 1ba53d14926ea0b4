package http

import (
	"net/http"
	"strings"
	"sync/atomic"

	"mapfin/internal/log"
	"mapfin/internal/sheets"
)

// collection resolves the {collection} path value, writing the error
// response itself when it is unknown.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (sheets.Collection, bool) {
	c, err := sheets.ParseCollection(r.PathValue("collection"))
	if err != nil {
		storeError(w, r, err)
		return "", false
	}
	return c, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	rows, err := s.store.FetchAll(r.Context(), c)
	if err != nil {
		storeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []sheets.Row{}
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Rows listed",
		log.FieldOperation, log.OpList, log.FieldCollection, string(c), log.FieldCount, len(rows))
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	row, err := decodeRow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stored, err := s.store.Insert(r.Context(), c, row)
	if err != nil {
		storeError(w, r, err)
		return
	}
	s.recordChanged(r, log.OpCreate, c, stored.ID())
	writeJSON(w, http.StatusOK, createResponse{Success: true, ID: stored.ID(), Data: stored})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	row, err := decodeRow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stored, err := s.store.Update(r.Context(), c, id, row)
	if err != nil {
		storeError(w, r, err)
		return
	}
	s.recordChanged(r, log.OpUpdate, c, id)
	writeJSON(w, http.StatusOK, updateResponse{Success: true, Data: stored})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.store.Delete(r.Context(), c, id); err != nil {
		storeError(w, r, err)
		return
	}
	s.recordChanged(r, log.OpDelete, c, id)
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}

func (s *Server) recordChanged(r *http.Request, op string, c sheets.Collection, id string) {
	atomic.AddInt64(&s.metrics.recordChanges, 1)
	log.LogRecordChange(r.Context(), op, string(c), id)
}

// handleUnmatchedAPI answers /api/ requests no route claimed.
func (s *Server) handleUnmatchedAPI(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	parts := strings.Split(rest, "/")
	switch {
	case rest == "":
		writeError(w, http.StatusBadRequest, "Sheet name is required")
	case len(parts) > 2:
		writeError(w, http.StatusNotFound, "Not found")
	case len(parts) == 1 && (r.Method == http.MethodPut || r.Method == http.MethodDelete):
		writeError(w, http.StatusBadRequest, "Sheet name and ID are required")
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
