// Package tui is the terminal front end: an input screen that collects a city
// and a weather screen that shows the result of one fetch.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kjstillabower/city-weather/internal/collector"
	"github.com/kjstillabower/city-weather/internal/display"
	"github.com/kjstillabower/city-weather/internal/query"
)

type screen int

const (
	screenInput screen = iota
	screenWeather
)

// weatherMsg carries a finished fetch back to the event loop.
type weatherMsg display.Result

// Model is the Bubble Tea model for the whole program.
type Model struct {
	query        *query.Store
	display      *display.Display
	form         *collector.Form
	input        textinput.Model
	spinner      spinner.Model
	screen       screen
	fetchTimeout time.Duration
	logger       *zap.Logger
}

var _ tea.Model = (*Model)(nil)

// New returns a model on the input screen.
func New(fetcher display.Fetcher, logger *zap.Logger, fetchTimeout time.Duration) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = "City name"
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	store := query.NewStore()
	return &Model{
		query:        store,
		display:      display.New(fetcher, logger),
		form:         collector.NewForm(store.Current()),
		input:        ti,
		spinner:      s,
		screen:       screenInput,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.display.Leave()
			return m, tea.Quit
		}
		if m.screen == screenInput {
			return m.updateInput(msg)
		}
		return m.updateWeather(msg)

	case weatherMsg:
		m.display.Resolve(display.Result(msg))
		return m, nil

	case spinner.TickMsg:
		if m.screen == screenWeather && m.display.State() == display.StateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.screen == screenInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.form.Draft = m.input.Value()
		if !m.form.Submit(m.query.Set) {
			return m, nil
		}
		m.input.SetValue(m.query.Current().String())
		return m, m.enterWeather()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateWeather(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.display.Leave()
		m.form = collector.NewForm(m.query.Current())
		m.input.SetValue(m.form.Draft)
		m.input.CursorEnd()
		m.screen = screenInput
		return m, m.input.Focus()
	case "q":
		m.display.Leave()
		return m, tea.Quit
	}
	return m, nil
}

// enterWeather mounts the display for the stored city.
func (m *Model) enterWeather() tea.Cmd {
	ticket, outcome := m.display.Enter(m.query.Current())
	switch outcome {
	case display.OutcomeRedirect:
		m.screen = screenInput
		return nil
	case display.OutcomeFetch:
		m.screen = screenWeather
		m.input.Blur()
		return tea.Batch(m.fetch(ticket), m.spinner.Tick)
	default:
		m.screen = screenWeather
		return nil
	}
}

// fetch runs the provider call off the event loop.
func (m *Model) fetch(t display.Ticket) tea.Cmd {
	d, timeout := m.display, m.fetchTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return weatherMsg(d.Fetch(ctx, t))
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("City Weather"))
	b.WriteString("\n\n")
	if m.screen == screenInput {
		b.WriteString(m.input.View())
		if m.form.Err != "" {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(m.form.Err))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: get weather  ctrl+c: quit"))
		return boxStyle.Render(b.String())
	}

	v := m.display.View()
	b.WriteString(titleStyle.Render(v.City))
	b.WriteString("\n\n")
	switch v.State {
	case display.StateLoading:
		b.WriteString(m.spinner.View() + " " + v.Message)
	case display.StateFailed:
		b.WriteString(errorStyle.Render(v.Message))
	case display.StateLoaded:
		b.WriteString(row("Temperature", v.TemperatureC+" °C / "+v.TemperatureF+" °F"))
		b.WriteString(row("Humidity", v.Humidity+"%"))
		b.WriteString(row("Wind speed", v.WindSpeed+" m/s"))
		b.WriteString(row("Condition", v.Condition))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("esc: back  q: quit"))
	return boxStyle.Render(b.String())
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}
