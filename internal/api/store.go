package api

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/store"
)

// maxRecordSize bounds a record body.
const maxRecordSize = 1 << 20

// StoreHandler serves the collection store backed by SQLite.
type StoreHandler struct {
	DB *sql.DB
}

// collection returns the collection named in the path, writing a 404 when
// the store does not serve it.
func (h *StoreHandler) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("collection")
	if !model.KnownCollection(name) {
		jsonError(w, http.StatusNotFound, fmt.Sprintf("unknown collection %q", name))
		return "", false
	}
	return name, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", model.ErrInvalid, err)
	}
	return data, nil
}

// List handles GET /api/{collection}.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	records, err := store.ListRecords(r.Context(), h.DB, name)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, records)
}

// Get handles GET /api/{collection}/{id}.
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	record, err := store.GetRecord(r.Context(), h.DB, name, r.PathValue("id"))
	h.respond(w, http.StatusOK, record, err)
}

// Create handles POST /api/{collection}.
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := store.CreateRecord(r.Context(), h.DB, name, data)
	h.respond(w, http.StatusCreated, record, err)
}

// Replace handles PUT /api/{collection}/{id}.
func (h *StoreHandler) Replace(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := store.ReplaceRecord(r.Context(), h.DB, name, r.PathValue("id"), data)
	h.respond(w, http.StatusOK, record, err)
}

// Patch handles PATCH /api/{collection}/{id}.
func (h *StoreHandler) Patch(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := store.PatchRecord(r.Context(), h.DB, name, r.PathValue("id"), fields)
	h.respond(w, http.StatusOK, record, err)
}

// Delete handles DELETE /api/{collection}/{id}.
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := h.collection(w, r)
	if !ok {
		return
	}
	deleted, err := store.DeleteRecord(r.Context(), h.DB, name, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus returns a handler for PATCH /api/{collection}/{id}/approve and
// /reject.
func (h *StoreHandler) SetStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := h.collection(w, r)
		if !ok {
			return
		}
		record, err := store.SetStatus(r.Context(), h.DB, name, r.PathValue("id"), status)
		h.respond(w, http.StatusOK, record, err)
	}
}

func (h *StoreHandler) respond(w http.ResponseWriter, status int, record []byte, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(record)
}
