package http

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kjstillabower/city-weather/internal/collector"
	"github.com/kjstillabower/city-weather/internal/display"
	"github.com/kjstillabower/city-weather/internal/lifecycle"
	"github.com/kjstillabower/city-weather/internal/query"
	"github.com/kjstillabower/city-weather/internal/traffic"
)

// Handler holds dependencies for the web views.
type Handler struct {
	fetcher         display.Fetcher
	sessions        *Sessions
	logger          *zap.Logger
	fetchTimeout    time.Duration
	refreshInterval time.Duration
}

// NewHandler returns a new Handler. fetchTimeout bounds each background provider
// call; refreshInterval is how often a loading page reloads itself.
func NewHandler(
	fetcher display.Fetcher,
	sessions *Sessions,
	logger *zap.Logger,
	fetchTimeout time.Duration,
	refreshInterval time.Duration,
) *Handler {
	return &Handler{
		fetcher:         fetcher,
		sessions:        sessions,
		logger:          logger,
		fetchTimeout:    fetchTimeout,
		refreshInterval: refreshInterval,
	}
}

// GetIndex handles GET /. Showing the input view unmounts the weather view.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	var current query.CityQuery
	if sess := sessionFromContext(r.Context()); sess != nil {
		sess.Display.Leave()
		current = sess.Query.Current()
	}
	form := collector.NewForm(current)
	h.render(w, r, http.StatusOK, func(w http.ResponseWriter) error {
		return renderIndex(w, indexPage{Draft: form.Draft})
	})
}

// PostIndex handles POST / (form submission). A session is only created once a
// valid city is stored.
func (h *Handler) PostIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		loggerFromRequest(r, h.logger).Debug("parse form", zap.Error(err))
	}
	form := &collector.Form{Draft: r.PostFormValue("city")}
	stored := form.Submit(func(q query.CityQuery) {
		if sess == nil {
			sess = h.newSession(w, r)
		}
		sess.Query.Set(q)
	})
	if !stored {
		h.render(w, r, http.StatusUnprocessableEntity, func(w http.ResponseWriter) error {
			return renderIndex(w, indexPage{Draft: form.Draft, Error: form.Err})
		})
		return
	}
	http.Redirect(w, r, "/weather", http.StatusSeeOther)
}

// GetWeather handles GET /weather. Without a stored city it redirects to / and
// never calls the provider.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ticket, outcome := sess.Display.Enter(sess.Query.Current())
	switch outcome {
	case display.OutcomeRedirect:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case display.OutcomeFetch:
		h.startFetch(correlationID(r.Context()), sess, ticket)
	}

	page := weatherPage{View: sess.Display.View()}
	if page.View.State == display.StateLoading {
		page.RefreshSeconds = refreshSeconds(h.refreshInterval)
	}
	h.render(w, r, http.StatusOK, func(w http.ResponseWriter) error {
		return renderWeather(w, page)
	})
}

// PostBack handles POST /weather/back. The stored city is kept so the form is prefilled.
func (h *Handler) PostBack(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		sess.Display.Leave()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if lifecycle.IsShuttingDown() {
		status, code = "shutting-down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"service":   "city-weather",
		"version":   "dev",
		"sessions":  h.sessions.Len(),
		"uptime":    lifecycle.Uptime().Round(time.Second).String(),
		"traffic":   traffic.Snapshot(traffic.Retention),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// startFetch runs the ticket on its own goroutine. The fetch outlives the
// request, so it gets a fresh context carrying only the correlation ID.
func (h *Handler) startFetch(corrID string, sess *Session, t display.Ticket) {
	ctx := context.Background()
	if corrID != "" {
		ctx = context.WithValue(ctx, "correlation_id", corrID)
	}
	h.logger.Debug("weather fetch started",
		zap.String("correlation_id", corrID),
		zap.String("session", sess.ID),
		zap.String("city", t.City.String()),
		zap.Uint64("generation", t.Generation))

	globalInFlightTracker.Increment()
	go func() {
		defer globalInFlightTracker.Decrement()
		ctx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()
		sess.Display.Run(ctx, t)
	}()
}

// newSession creates a session, sets its cookie and subscribes its display to
// the query store. A city change while the display is mounted starts a fetch
// tagged with the correlation ID of the request that made the change.
func (h *Handler) newSession(w http.ResponseWriter, r *http.Request) *Session {
	sess := h.sessions.Create(display.New(h.fetcher, h.logger))
	sess.setCorrelationID(correlationID(r.Context()))
	sess.Display.Follow(sess.Query, func(t display.Ticket) {
		h.startFetch(sess.correlationID(), sess, t)
	})
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	loggerFromRequest(r, h.logger).Debug("session created", zap.String("session", sess.ID))
	return sess
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, fn func(http.ResponseWriter) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := fn(w); err != nil {
		loggerFromRequest(r, h.logger).Error("render page", zap.Error(err))
	}
}

func refreshSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value("correlation_id").(string)
	return id
}

// loggerFromRequest returns the request-scoped logger set by CorrelationIDMiddleware, or fallback.
func loggerFromRequest(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
