package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/services"
)

// GET /api/entries?favorites=&category=&mood=&tag=&q=
func (h *handler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.Filter{
		Category: models.Category(q.Get("category")),
		Mood:     models.Mood(q.Get("mood")),
		Tag:      q.Get("tag"),
		Query:    q.Get("q"),
	}
	if v := q.Get("favorites"); v != "" {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: favorites=%q", errBadRequest, v))
			return
		}
		f.FavoritesOnly = fav
	}

	es, err := h.Entries.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}

// POST /api/entries
func (h *handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var d services.Draft
	if err := decodeBody(r, &d); err != nil {
		h.writeError(w, r, err)
		return
	}
	e, err := h.Entries.Create(r.Context(), d)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/entries/"+e.ID)
	writeJSON(w, http.StatusCreated, e)
}

// GET /api/entries/{id}
func (h *handler) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.Entries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// PUT /api/entries/{id}
func (h *handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var e models.Entry
	if err := decodeBody(r, &e); err != nil {
		h.writeError(w, r, err)
		return
	}
	if e.ID == "" {
		e.ID = id
	}
	if e.ID != id {
		h.writeError(w, r, fmt.Errorf("%w: body id %q does not match path", errBadRequest, e.ID))
		return
	}

	saved, err := h.Entries.Update(r.Context(), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DELETE /api/entries/{id}
func (h *handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Entries.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/entries/{id}/favorite
func (h *handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	e, err := h.Entries.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type calendarResponse struct {
	Month string         `json:"month"`
	Days  []services.Day `json:"days"`
}

// GET /api/calendar?month=YYYY-MM
func (h *handler) calendar(w http.ResponseWriter, r *http.Request) {
	month := h.Now()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := time.Parse("2006-01", v)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: month must be YYYY-MM", errBadRequest))
			return
		}
		month = m
	}

	days, err := h.Entries.ByDay(r.Context(), month.Year(), month.Month())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calendarResponse{Month: month.Format("2006-01"), Days: days})
}

// GET /api/stats
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Entries.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
