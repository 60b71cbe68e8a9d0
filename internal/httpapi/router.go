// Package httpapi exposes the diary over a loopback JSON API for local UIs.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/services"
)

// PINHeader carries the PIN when security is enabled.
const PINHeader = "X-Daybook-Pin"

// maxImportBytes bounds import bodies; entries embed media payloads.
const maxImportBytes = 64 << 20

// Snapshotter is the subset of snapshot.Codec used by the API.
type Snapshotter interface {
	Export(ctx context.Context) ([]byte, error)
	ImportFrom(ctx context.Context, r io.Reader) (int, error)
}

type Deps struct {
	Entries  services.EntryService
	Settings services.SettingsService
	Snapshot Snapshotter
	Log      logging.Logger

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Now defaults to time.Now; it picks the default calendar month.
	Now func() time.Time
	// PINAttempts throttles wrong PINs. Once its tokens run out every gated
	// request is refused with 429 until they refill.
	PINAttempts *rate.Limiter
	// MaxImportBytes caps POST /api/import bodies; larger bodies get 413.
	// Zero means maxImportBytes.
	MaxImportBytes int64
}

// DefaultPINAttempts allows a burst of five wrong PINs, then one every two
// seconds.
func DefaultPINAttempts() *rate.Limiter {
	return rate.NewLimiter(rate.Every(2*time.Second), 5)
}

type handler struct {
	Deps
}

// NewRouter builds the API routes. Everything under /api except reading
// settings requires the PIN header while the diary is locked.
func NewRouter(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.PINAttempts == nil {
		deps.PINAttempts = DefaultPINAttempts()
	}
	if deps.MaxImportBytes <= 0 {
		deps.MaxImportBytes = maxImportBytes
	}
	h := &handler{Deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.Log))

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", h.getSettings)

		r.Group(func(r chi.Router) {
			r.Use(h.requireUnlocked)

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", h.listEntries)
				r.Post("/", h.createEntry)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getEntry)
					r.Put("/", h.updateEntry)
					r.Delete("/", h.deleteEntry)
					r.Post("/favorite", h.toggleFavorite)
				})
			})
			r.Get("/calendar", h.calendar)
			r.Get("/stats", h.stats)

			r.Put("/settings", h.replaceSettings)
			r.Patch("/settings", h.patchSettings)
			r.Put("/pin", h.setPIN)
			r.Delete("/pin", h.clearPIN)

			r.Get("/export", h.export)
			r.Post("/import", h.importSnapshot)
		})
	})
	return r
}

func (h *handler) requireUnlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.PINAttempts.Tokens() < 1 {
			h.tooManyAttempts(w, r)
			return
		}
		if err := h.Settings.Unlock(r.Context(), r.Header.Get(PINHeader)); err != nil {
			if errors.Is(err, common.ErrLocked) {
				h.PINAttempts.Allow()
			}
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) tooManyAttempts(w http.ResponseWriter, r *http.Request) {
	retry := 1
	if l := h.PINAttempts.Limit(); l > 0 {
		d := time.Duration(float64(time.Second) / float64(l)).Round(time.Second)
		retry = max(1, int(d.Seconds()))
	}
	h.Log.Warn(r.Context(), "PIN attempts throttled", "path", r.URL.Path)
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many wrong PINs, retry later"})
}

func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000,
			}
			switch {
			case status >= 500:
				log.Error(r.Context(), "http request", args...)
			case status >= 400:
				log.Warn(r.Context(), "http request", args...)
			default:
				log.Debug(r.Context(), "http request", args...)
			}
		})
	}
}
