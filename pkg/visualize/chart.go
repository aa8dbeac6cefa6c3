package visualize

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/spencer-p/tidechart/pkg/sunset"
	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/tides/splines"
	"github.com/spencer-p/tidechart/pkg/timetricks"
)

const (
	width  = 1200
	height = 300

	hourFmt = "3 PM"
)

// Chart is an SVG tide chart. It is a tides.ChartSink: every frame replaces
// the previous one in place, and Encode draws the latest frame. It is safe to
// encode while a new frame arrives.
//
// A frame's now marker follows the clock while the frame's day lasts, and is
// dropped after.
type Chart struct {
	place *sunset.Place
	now   func() time.Time

	mu     sync.RWMutex
	frame  tides.ChartFrame
	spline splines.Spline
}

var _ tides.ChartSink = (*Chart)(nil)

// Option configures a Chart.
type Option func(*Chart)

// WithClock replaces time.Now for the now marker.
func WithClock(now func() time.Time) Option {
	return func(c *Chart) {
		c.now = now
	}
}

// NewChart returns an empty chart. When place is not nil, daylight at place is
// shaded.
func NewChart(place *sunset.Place, opts ...Option) *Chart {
	c := &Chart{place: place, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chart) ReplaceChart(frame tides.ChartFrame) {
	spline := splines.CurvesBetween(frame.Points)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
	c.spline = spline
}

// Frame returns the frame currently drawn.
func (c *Chart) Frame() tides.ChartFrame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live()
}

// live is the frame with its now marker moved to the current time.
func (c *Chart) live() tides.ChartFrame {
	f := c.frame
	if f.Now == nil {
		return f
	}
	now := c.now()
	if !timetricks.SameDay(f.Min, now.In(f.Min.Location())) {
		f.Now = nil
		return f
	}
	f.Now = &now
	return f
}

// NowLevel estimates the water level at the now marker. It is false when
// there is no marker or the marker is outside the predicted events.
func (c *Chart) NowLevel() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nowLevel()
}

func (c *Chart) nowLevel() (float64, bool) {
	return c.levelAt(c.live().Now)
}

func (c *Chart) levelAt(t *time.Time) (float64, bool) {
	if t == nil {
		return 0, false
	}
	level := c.spline.Eval(*t)
	return level, !math.IsNaN(level)
}

// Encode writes the chart as an SVG element.
func (c *Chart) Encode(w io.Writer) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	var err error
	io := func(nextn int, nexterr error) {
		n += nextn
		if nexterr != nil && err == nil {
			err = nexterr
		}
	}

	f := c.live()
	sc := newScale(f)

	io(fmt.Fprintf(w, `<svg viewBox="0 0 %d %d" onclick="" xmlns="http://www.w3.org/2000/svg">`, width, height))

	// Calculate dawn/dusk and draw the sunshine.
	var risex, setx int
	daylight := c.place != nil && !f.Min.IsZero()
	if daylight {
		rise, set := sunset.Daylight(f.Min, *c.place)
		risex, setx = clamp(sc.x(rise), 0, width), clamp(sc.x(set), 0, width)
		io(fmt.Fprintf(w, `<rect class="daytime" fill="lightyellow" x="%d" y="%d" width="%d" height="%d"/>`,
			risex, 0,
			setx-risex, height))
	}

	// Guides for every whole foot, MLLW emphasized.
	for ft := math.Ceil(sc.lo); ft <= sc.hi; ft++ {
		y := sc.y(ft)
		class, stroke := "foot", "#e9c46a"
		if ft == 0 {
			class, stroke = "mllw", "#e76f51"
		}
		io(fmt.Fprintf(w, `<line class="%s" stroke="%s" x1="0" y1="%d" x2="%d" y2="%d"/>`,
			class, stroke, y, width, y))
		io(fmt.Fprintf(w, `<text class="foot_label" x="4" y="%d" font-size="12">%.0f ft</text>`, y-2, ft))
	}

	// Hour ticks.
	if !f.Min.IsZero() {
		for h := 0; h < 24; h += 3 {
			t := f.Min.Add(time.Duration(h) * time.Hour)
			x := sc.x(t)
			io(fmt.Fprintf(w, `<text class="hour" x="%d" y="%d" font-size="12">%s</text>`,
				x+2, height-4, t.Format(hourFmt)))
		}
	}

	// The tide curve joins each pair of events with flat tangents at both
	// ends, matching the spline.
	if len(f.Points) > 1 {
		x0, y0 := sc.x(f.Points[0].X), sc.y(f.Points[0].Y)
		io(fmt.Fprintf(w, `<path class="tide" fill="skyblue" fill-opacity="60%%" stroke="steelblue" d="M %d,%d L %d,%d `,
			x0, height, x0, y0))
		for i := 0; i+1 < len(f.Points); i++ {
			x1, y1 := sc.x(f.Points[i].X), sc.y(f.Points[i].Y)
			x2, y2 := sc.x(f.Points[i+1].X), sc.y(f.Points[i+1].Y)
			cx := (x1 + x2) / 2
			io(fmt.Fprintf(w, `C %d,%d %d,%d %d,%d `, cx, y1, cx, y2, x2, y2))
		}
		xn := sc.x(f.Points[len(f.Points)-1].X)
		io(fmt.Fprintf(w, `L %d,%d z"/>`, xn, height))
	}

	for _, p := range f.Points {
		x, y := sc.x(p.X), sc.y(p.Y)
		io(fmt.Fprintf(w, `<circle class="event" fill="steelblue" cx="%d" cy="%d" r="5"/>`, x, y))
		io(fmt.Fprintf(w, `<text class="event_label" x="%d" y="%d" font-size="14">%.2f ft %s</text>`,
			x+6, y-6, p.Y, p.X.Format("3:04 PM")))
	}

	// Draw the night time shadows.
	if daylight {
		io(fmt.Fprintf(w, `<rect class="night" fill="blue" fill-opacity="25%%" x="%d" y="%d" width="%d" height="%d"/>`,
			0, 0,
			risex, height))
		io(fmt.Fprintf(w, `<rect class="night" fill="blue" fill-opacity="25%%" x="%d" y="%d" width="%d" height="%d"/>`,
			setx, 0,
			width-setx, height))
	}

	if f.Now != nil {
		x := sc.x(*f.Now)
		io(fmt.Fprintf(w, `<line class="now" stroke="gold" stroke-width="3" x1="%d" y1="0" x2="%d" y2="%d"/>`, x, x, height))
		label := "now"
		if level, ok := c.levelAt(f.Now); ok {
			label = fmt.Sprintf("now ≈ %.1f ft", level)
		}
		io(fmt.Fprintf(w, `<text class="now_label" x="%d" y="16" font-size="14">%s</text>`, x+4, label))
	}

	// Insert spline data as JSON.
	splineJSON, jsonErr := json.Marshal(c.spline)
	if jsonErr != nil {
		io(0, jsonErr)
	}
	io(fmt.Fprintf(w, `<text class="spline" visibility="hidden">%s</text>`, splineJSON))

	// Insert date of this graph as unix.
	io(fmt.Fprintf(w, `<text class="unixtime" visibility="hidden">%d</text>`, f.Min.Unix()))

	io(fmt.Fprintf(w, `</svg>`))

	return n, err
}

// scale maps the frame's time axis onto the chart width and its feet onto the
// chart height.
type scale struct {
	min, max time.Time
	lo, hi   float64
}

func newScale(f tides.ChartFrame) scale {
	if len(f.Points) == 0 {
		return scale{min: f.Min, max: f.Max, lo: -1, hi: 3}
	}
	s := scale{min: f.Min, max: f.Max, lo: -0.5, hi: 0.5}
	for _, p := range f.Points {
		s.lo = math.Min(s.lo, p.Y-0.5)
		s.hi = math.Max(s.hi, p.Y+0.5)
	}
	return s
}

func (s scale) x(t time.Time) int {
	span := s.max.Unix() - s.min.Unix()
	if span <= 0 {
		return 0
	}
	return int((t.Unix() - s.min.Unix()) * width / span)
}

func (s scale) y(ft float64) int {
	return height - int((ft-s.lo)*height/(s.hi-s.lo))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
