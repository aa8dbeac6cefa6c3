package tides

import (
	"fmt"
	"time"

	"github.com/spencer-p/tidechart/pkg/timetricks"
)

const timeFmt = "3:04 PM"

// TableRow is one display-ready table row.
type TableRow struct {
	Kind  string `json:"kind"`
	Time  string `json:"time"`
	Level string `json:"level"`
}

func (r TableRow) String() string {
	return r.Kind + " | " + r.Time + " | " + r.Level
}

// ChartPoint is one chart sample, x = time and y = feet.
type ChartPoint struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// ChartFrame is the full chart state for one effective day. Now is nil unless
// the day is today.
type ChartFrame struct {
	Points []ChartPoint `json:"points"`
	Min    time.Time    `json:"min"`
	Max    time.Time    `json:"max"`
	Now    *time.Time   `json:"now,omitempty"`
}

// Status is what the status line shows: the day currently rendered and the
// notices raised by the most recent trigger.
type Status struct {
	Date    time.Time
	Notices []error
}

// DateLabel is the status line text, or "" before anything was rendered.
func (s Status) DateLabel() string {
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.Format(timetricks.StatusFormat)
}

// TableSink accepts rows. Each call replaces all prior rows.
type TableSink interface {
	ReplaceRows(rows []TableRow)
}

// ChartSink accepts a chart frame. Each call replaces all prior chart state.
type ChartSink interface {
	ReplaceChart(frame ChartFrame)
}

// StatusSink accepts the status line.
type StatusSink interface {
	ShowStatus(s Status)
}

// Row formats e for the table.
func Row(e Event) TableRow {
	return TableRow{
		Kind:  e.Kind.Label(),
		Time:  e.Time.Format(timeFmt),
		Level: fmt.Sprintf("%.2f ft", e.Level),
	}
}

// Rows formats events for the table, preserving order.
func Rows(events Events) []TableRow {
	rows := make([]TableRow, len(events))
	for i, e := range events {
		rows[i] = Row(e)
	}
	return rows
}

// Frame builds the chart for events shown on day. now is marked only if it
// falls on day.
func Frame(events Events, day time.Time, now time.Time) ChartFrame {
	start, end := timetricks.DayBounds(day)
	frame := ChartFrame{
		Points: make([]ChartPoint, len(events)),
		Min:    start,
		Max:    end,
	}
	for i, e := range events {
		frame.Points[i] = ChartPoint{X: e.Time, Y: e.Level}
	}
	if timetricks.SameDay(day, now.In(day.Location())) {
		frame.Now = &now
	}
	return frame
}
