package tui

import (
	"sync"

	"github.com/spencer-p/tidechart/pkg/tides"
)

// screen is the terminal render state. The presenter writes it from load
// commands while View reads it on the program's goroutine.
type screen struct {
	mu     sync.Mutex
	rows   []tides.TableRow
	frame  tides.ChartFrame
	status tides.Status
}

func (s *screen) ReplaceRows(rows []tides.TableRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

func (s *screen) ReplaceChart(frame tides.ChartFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

func (s *screen) ShowStatus(status tides.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *screen) sinks() tides.Sinks {
	return tides.Sinks{Table: s, Chart: s, Status: s}
}

func (s *screen) snapshot() ([]tides.TableRow, tides.ChartFrame, tides.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.frame, s.status
}
