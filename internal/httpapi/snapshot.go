package httpapi

import (
	"errors"
	"fmt"
	"net/http"
)

// GET /api/export
func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.Snapshot.Export(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("daybook-%s.json", h.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type importResponse struct {
	Imported int `json:"imported"`
}

// POST /api/import
func (h *handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	n, err := h.Snapshot.ImportFrom(r.Context(), http.MaxBytesReader(w, r.Body, h.MaxImportBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
			Error: fmt.Sprintf("snapshot exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}
