package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"mentorbook/internal/service/booking"
)

// DefaultFeedSpan is the export window used when the request gives no "to".
const DefaultFeedSpan = 30 * 24 * time.Hour

type calendarExporter interface {
	ExportCalendar(ctx context.Context, ownerID string, from, to time.Time) ([]byte, error)
}

type FeedConfig struct {
	RateLimit  int
	RateWindow time.Duration
}

type FeedHandler struct {
	svc calendarExporter
	log *slog.Logger
	now func() time.Time
}

func NewFeedHandler(svc calendarExporter, log *slog.Logger) *FeedHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FeedHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.feed")),
		now: time.Now,
	}
}

// Router mounts GET /v1/owners/{ownerID}/calendar.ics behind a per-IP limiter.
func (h *FeedHandler) Router(cfg FeedConfig) http.Handler {
	r := chi.NewRouter()
	if cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(cfg.RateLimit, window))
	}

	r.Route("/v1/owners/{ownerID}", func(r chi.Router) {
		r.Get("/calendar.ics", h.serveCalendar)
	})
	return r
}

func (h *FeedHandler) serveCalendar(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	log := h.log.With(slog.String("owner_id", ownerID))

	from, to, err := h.feedWindow(r)
	if err != nil {
		log.Warn("invalid feed window", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := h.svc.ExportCalendar(r.Context(), ownerID, from, to)
	if err != nil {
		var vErr *booking.ValidationError
		switch {
		case errors.As(err, &vErr):
			log.Warn("invalid feed request", slog.Any("err", err))
			http.Error(w, vErr.Error(), http.StatusBadRequest)
		case errors.Is(err, booking.ErrOwnerNotFound):
			log.Info("owner not found")
			http.Error(w, "owner has no recurrence rule", http.StatusNotFound)
		case errors.Is(err, booking.ErrStoreUnavailable):
			log.Error("store unavailable", slog.Any("err", err))
			http.Error(w, "temporarily unavailable, try again", http.StatusServiceUnavailable)
		default:
			log.Error("calendar export failed", slog.Any("err", err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Warn("feed write failed", slog.Any("err", err))
	}
}

// feedWindow reads optional RFC 3339 "from" and "to" query parameters.
// from defaults to the start of the current UTC day, to to from+DefaultFeedSpan.
func (h *FeedHandler) feedWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	from := h.now().UTC().Truncate(24 * time.Hour)
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be an RFC 3339 timestamp")
		}
		from = t
	}

	to := from.Add(DefaultFeedSpan)
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be an RFC 3339 timestamp")
		}
		to = t
	}
	return from, to, nil
}
