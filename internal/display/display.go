// Package display implements the weather display lifecycle: one provider fetch
// per entry, tracked through Loading, Loaded and Failed.
//
// Each entry is tagged with a generation. A result is applied only if its
// generation is still current, so a slow response for a superseded city can
// never overwrite the state of a newer query.
package display

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kjstillabower/city-weather/internal/client"
	"github.com/kjstillabower/city-weather/internal/models"
	"github.com/kjstillabower/city-weather/internal/observability"
	"github.com/kjstillabower/city-weather/internal/query"
	"github.com/kjstillabower/city-weather/internal/traffic"
)

// GenericErrorMessage is the only failure text users see.
const GenericErrorMessage = "Unable to fetch weather data. Please try again."

// LoadingMessage is rendered while a fetch is outstanding.
const LoadingMessage = "Loading weather data..."

type State int

const (
	StateIdle State = iota // not mounted
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome tells the caller what to do after Enter.
type Outcome int

const (
	// OutcomeUnchanged: already showing this city; render the current state.
	OutcomeUnchanged Outcome = iota
	// OutcomeFetch: state reset to Loading; run the returned Ticket.
	OutcomeFetch
	// OutcomeRedirect: no city query; go back to the input view without fetching.
	OutcomeRedirect
)

// Fetcher is the provider call the display depends on.
type Fetcher interface {
	GetCurrentWeather(ctx context.Context, city string) (models.WeatherSnapshot, error)
}

// Ticket identifies one fetch.
type Ticket struct {
	Generation uint64
	City       query.CityQuery
}

// Result is the outcome of running a Ticket.
type Result struct {
	Ticket
	Snapshot models.WeatherSnapshot
	Err      error
}

// Display holds the state of one weather view. Safe for concurrent use.
type Display struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu         sync.Mutex
	mounted    bool
	generation uint64
	city       query.CityQuery
	state      State
	snapshot   *models.WeatherSnapshot
	fahrenheit float64 // derived from snapshot when it is stored
	errMsg     string
}

// New returns an unmounted display. A nil logger disables logging.
func New(fetcher Fetcher, logger *zap.Logger) *Display {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Display{fetcher: fetcher, logger: logger}
}

// Enter mounts the display for city. An empty city yields OutcomeRedirect and
// leaves the display untouched. A first mount, or a city different from the
// bound one, starts a new generation in Loading with snapshot and error cleared.
func (d *Display) Enter(city query.CityQuery) (Ticket, Outcome) {
	if city.IsZero() {
		return Ticket{}, OutcomeRedirect
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mounted && d.city == city {
		return Ticket{}, OutcomeUnchanged
	}
	return d.resetLocked(city), OutcomeFetch
}

// resetLocked starts a new generation for city. d.mu must be held.
func (d *Display) resetLocked(city query.CityQuery) Ticket {
	d.mounted = true
	d.generation++
	d.city = city
	d.state = StateLoading
	d.snapshot = nil
	d.fahrenheit = 0
	d.errMsg = ""
	observability.DisplayTransitionsTotal.WithLabelValues(StateLoading.String()).Inc()
	return Ticket{Generation: d.generation, City: city}
}

// Follow subscribes the display to store. While mounted, a changed city
// re-enters the display and start is called with the new ticket.
func (d *Display) Follow(store *query.Store, start func(Ticket)) {
	store.Subscribe(func(q query.CityQuery) {
		if q.IsZero() {
			return
		}
		d.mu.Lock()
		if !d.mounted || d.city == q {
			d.mu.Unlock()
			return
		}
		t := d.resetLocked(q)
		d.mu.Unlock()
		start(t)
	})
}

// Fetch performs the single provider call for t. It does not touch display state.
func (d *Display) Fetch(ctx context.Context, t Ticket) Result {
	observability.RecordWeatherQuery(t.City.String())
	snap, err := d.fetcher.GetCurrentWeather(ctx, t.City.String())
	traffic.RecordFetch(err)
	return Result{Ticket: t, Snapshot: snap, Err: err}
}

// Resolve applies r if its generation is current and the display is mounted.
// Returns false when the result was discarded as stale.
func (d *Display) Resolve(r Result) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.mounted || r.Generation != d.generation {
		observability.StaleResultsDiscardedTotal.Inc()
		d.logger.Debug("discarding stale weather result",
			zap.String("city", r.City.String()),
			zap.Uint64("generation", r.Generation),
			zap.Uint64("current_generation", d.generation))
		return false
	}

	if r.Err != nil {
		d.state = StateFailed
		d.snapshot = nil
		d.fahrenheit = 0
		d.errMsg = GenericErrorMessage
		observability.DisplayTransitionsTotal.WithLabelValues(StateFailed.String()).Inc()
		d.logger.Warn("weather fetch failed",
			zap.String("city", r.City.String()),
			zap.String("category", string(client.CategorizeError(r.Err))),
			zap.Error(r.Err))
		return true
	}

	snap := r.Snapshot
	d.state = StateLoaded
	d.snapshot = &snap
	d.fahrenheit = snap.Fahrenheit()
	d.errMsg = ""
	observability.DisplayTransitionsTotal.WithLabelValues(StateLoaded.String()).Inc()
	d.logger.Debug("weather loaded",
		zap.String("city", r.City.String()),
		zap.Float64("temperature_c", snap.TemperatureC))
	return true
}

// Run fetches and resolves t. Intended for callers that run the fetch on its own goroutine.
func (d *Display) Run(ctx context.Context, t Ticket) bool {
	return d.Resolve(d.Fetch(ctx, t))
}

// Leave unmounts the display. The stored city query is not affected; any
// outstanding fetch is discarded when it resolves.
func (d *Display) Leave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounted = false
	d.state = StateIdle
	d.snapshot = nil
	d.fahrenheit = 0
	d.errMsg = ""
}

// State returns the current lifecycle state.
func (d *Display) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// View is an immutable render model. Weather fields are set only in StateLoaded.
type View struct {
	State        State
	City         string
	TemperatureC string
	TemperatureF string
	Humidity     string
	WindSpeed    string
	Condition    string
	Message      string
}

// Loaded reports whether weather fields should be rendered.
func (v View) Loaded() bool { return v.State == StateLoaded }

// View returns the current render model.
func (d *Display) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{State: d.state, City: d.city.String()}
	switch d.state {
	case StateLoading:
		v.Message = LoadingMessage
	case StateFailed:
		v.Message = d.errMsg
	case StateLoaded:
		v.City = d.snapshot.City
		v.TemperatureC = fmt.Sprintf("%.1f", d.snapshot.TemperatureC)
		v.TemperatureF = fmt.Sprintf("%.1f", d.fahrenheit)
		v.Humidity = fmt.Sprintf("%d", d.snapshot.Humidity)
		v.WindSpeed = fmt.Sprintf("%.1f", d.snapshot.WindSpeed)
		v.Condition = d.snapshot.Condition
	}
	return v
}
