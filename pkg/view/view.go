// Package view holds the web dashboard's render state.
package view

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/visualize"
)

// Page is the table and status sink for the web dashboard. Its chart render
// target is owned by the page and handed to the presenter through Sinks.
type Page struct {
	chart *visualize.Chart

	// render is held by the presenter across one load's writes, and by
	// Snapshot so rows, chart and status come from the same load.
	render sync.RWMutex

	mu     sync.RWMutex
	rows   []tides.TableRow
	status tides.Status
}

var (
	_ tides.TableSink  = (*Page)(nil)
	_ tides.StatusSink = (*Page)(nil)
)

// NewPage returns an empty page drawing into chart.
func NewPage(chart *visualize.Chart) *Page {
	return &Page{chart: chart}
}

// Sinks returns the render targets to give a presenter.
func (p *Page) Sinks() tides.Sinks {
	return tides.Sinks{
		Table:  p,
		Chart:  p.chart,
		Status: p,
		Batch:  &p.render,
	}
}

func (p *Page) ReplaceRows(rows []tides.TableRow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = rows
}

func (p *Page) ShowStatus(s tides.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}

// Chart is the page's chart render target.
func (p *Page) Chart() *visualize.Chart {
	return p.chart
}

// Snapshot is an immutable copy of the page state.
type Snapshot struct {
	Date     string           `json:"date"`
	Day      string           `json:"day,omitempty"`
	Notices  []string         `json:"notices"`
	Rows     []tides.TableRow `json:"rows"`
	Chart    tides.ChartFrame `json:"chart"`
	NowLevel *float64         `json:"now_level,omitempty"`

	// ChartSVG is the rendered chart, only filled for templates.
	ChartSVG template.HTML `json:"-"`
}

// Snapshot copies the current state. When withSVG is set the chart is
// rendered into ChartSVG.
func (p *Page) Snapshot(withSVG bool) Snapshot {
	p.render.RLock()
	defer p.render.RUnlock()

	p.mu.RLock()
	s := Snapshot{
		Date:    p.status.DateLabel(),
		Notices: make([]string, len(p.status.Notices)),
		Rows:    append([]tides.TableRow(nil), p.rows...),
	}
	if !p.status.Date.IsZero() {
		s.Day = p.status.Date.Format("2006-01-02")
	}
	for i, n := range p.status.Notices {
		s.Notices[i] = n.Error()
	}
	p.mu.RUnlock()

	s.Chart = p.chart.Frame()
	if level, ok := p.chart.NowLevel(); ok {
		s.NowLevel = &level
	}
	if withSVG && !s.Chart.Min.IsZero() {
		var b bytes.Buffer
		if _, err := p.chart.Encode(&b); err != nil {
			log.Printf("Failed to encode chart: %v", err)
		}
		s.ChartSVG = template.HTML(b.String())
	}
	return s
}

// Empty reports whether nothing has been rendered yet.
func (s Snapshot) Empty() bool {
	return s.Date == ""
}
