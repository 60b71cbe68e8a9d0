package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/services"
)

// redact hides the PIN value; clients only learn whether one is set.
func redact(s models.AppSettings) models.AppSettings {
	s.PIN = nil
	return s
}

// GET /api/settings
func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, redact(h.Settings.Load(r.Context())))
}

// PUT /api/settings replaces every field except the PIN, which only
// changes through /api/pin.
func (h *handler) replaceSettings(w http.ResponseWriter, r *http.Request) {
	var next models.AppSettings
	if err := decodeBody(r, &next); err != nil {
		h.writeError(w, r, err)
		return
	}
	next.PIN = h.Settings.Load(r.Context()).PIN

	saved, err := h.Settings.Replace(r.Context(), next)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, redact(saved))
}

// PATCH /api/settings
func (h *handler) patchSettings(w http.ResponseWriter, r *http.Request) {
	var p services.SettingsPatch
	if err := decodeBody(r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.Settings.Update(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, redact(saved))
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// PUT /api/pin
func (h *handler) setPIN(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Settings.SetPIN(r.Context(), req.PIN); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/pin
func (h *handler) clearPIN(w http.ResponseWriter, r *http.Request) {
	if err := h.Settings.ClearPIN(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
