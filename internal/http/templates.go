package http

import (
	"embed"
	"html/template"
	"io"

	"github.com/kjstillabower/city-weather/internal/display"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// RateLimitedMessage is shown when a view request is denied by the rate limiter.
const RateLimitedMessage = "Too many requests. Retrying shortly..."

// layout carries the fields read by the shared header.
type layout struct {
	RefreshSeconds int    // zero disables the meta refresh
	RefreshURL     string // empty reloads the current URL
}

type indexPage struct {
	layout
	Draft string
	Error string
}

type weatherPage struct {
	layout // refresh set only while loading
	View   display.View
}

type rateLimitedPage struct {
	layout
	Message   string
	RequestID string
}

func renderIndex(w io.Writer, p indexPage) error {
	return pages.ExecuteTemplate(w, "index", p)
}

func renderWeather(w io.Writer, p weatherPage) error {
	return pages.ExecuteTemplate(w, "weather", p)
}

func renderRateLimited(w io.Writer, p rateLimitedPage) error {
	return pages.ExecuteTemplate(w, "ratelimited", p)
}
