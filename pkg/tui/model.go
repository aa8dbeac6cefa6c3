// Package tui is the terminal tide dashboard. Its bubbletea model is the
// event loop: every refresh runs a presenter load as a command, and the
// presenter decides which finished load is shown.
package tui

import (
	"context"
	"errors"
	"time"

	bhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/spencer-p/tidechart/pkg/noaa"
	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/timetricks"
)

// loadedMsg reports that a load command finished, rendered or not.
type loadedMsg struct {
	err error
}

type Model struct {
	presenter *tides.Presenter
	screen    *screen
	input     textinput.Model
	keys      keyMap
	help      bhelp.Model
	initial   string
	loading   int
	width     int
	height    int
}

// New returns a model showing station, whose time zone is loc. The first load
// asks for initialDate ("YYYY-MM-DD", empty for today).
func New(src tides.Source, station noaa.Station, loc *time.Location, initialDate string, opts ...tides.Option) Model {
	scr := &screen{}
	input := textinput.New()
	input.Placeholder = timetricks.InputFormat
	input.CharLimit = len(timetricks.InputFormat)
	input.Prompt = "date: "
	input.SetValue(initialDate)
	input.Focus()

	return Model{
		presenter: tides.NewPresenter(src, station, loc, scr.sinks(), opts...),
		screen:    scr,
		input:     input,
		keys:      keys,
		help:      bhelp.New(),
		initial:   initialDate,
		// Init starts the first load.
		loading: 1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(m.initial))
}

// load refreshes from input in the background.
func (m Model) load(input string) tea.Cmd {
	p := m.presenter
	return func() tea.Msg {
		err := p.Refresh(context.Background(), input)
		if err != nil && !errors.Is(err, tides.ErrSuperseded) {
			log.Debug().Err(err).Str("input", input).Msg("Load finished with error")
		}
		return loadedMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg:
		if m.loading > 0 {
			m.loading--
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.loading++
			return m, m.load(m.input.Value())
		case key.Matches(msg, m.keys.Today):
			m.input.SetValue("")
			m.loading++
			return m, m.load("")
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
