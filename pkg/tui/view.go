package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/tides/splines"
)

const (
	chartWidth  = 60
	chartHeight = 12
	sampleStep  = 15 * time.Minute
)

func (m Model) View() string {
	rows, frame, status := m.screen.snapshot()

	b := &strings.Builder{}
	b.WriteString(titleStyle.Render("tides"))
	b.WriteString(" ")
	if label := status.DateLabel(); label != "" {
		b.WriteString(statusStyle.Render(label))
	} else {
		b.WriteString(infoStyle.Render("no tide data yet"))
	}
	if m.loading > 0 {
		b.WriteString(infoStyle.Render("  loading…"))
	}
	b.WriteString("\n")
	for _, n := range status.Notices {
		b.WriteString(noticeStyle.Render(n.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(rows) > 0 {
		b.WriteString(renderTable(rows))
		b.WriteString("\n")
	}
	if len(frame.Points) > 1 {
		b.WriteString(renderChart(frame))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	out := contentStyle.Render(b.String())
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

func renderTable(rows []tides.TableRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Tide", "Time", "Level")
	for _, r := range rows {
		t.Row(r.Kind, r.Time, r.Level)
	}
	return t.String()
}

// renderChart draws the spline through the frame's events across the whole
// day, with a vertical marker at now.
func renderChart(frame tides.ChartFrame) string {
	spline := splines.CurvesBetween(frame.Points)
	samples := splines.Samples(spline, sampleStep)

	minV, maxV := frame.Points[0].Y, frame.Points[0].Y
	for _, p := range frame.Points[1:] {
		minV = math.Min(minV, p.Y)
		maxV = math.Max(maxV, p.Y)
	}
	if minV == maxV {
		maxV += 0.1
		minV -= 0.1
	}

	lc := timeserieslinechart.New(chartWidth, chartHeight)
	lc.SetTimeRange(frame.Min, frame.Max)
	lc.SetViewTimeAndYRange(frame.Min, frame.Max, minV, maxV)
	// About one label every three hours.
	lc.SetXStep(max(1, lc.GraphWidth()/8))
	lc.Model.XLabelFormatter = func(i int, v float64) string {
		return time.Unix(int64(v), 0).In(frame.Min.Location()).Format("15:04")
	}
	for _, s := range samples {
		lc.Push(timeserieslinechart.TimePoint{Time: s.X, Value: s.Y})
	}
	lc.DrawBraille()

	if frame.Now != nil {
		drawNow(&lc, *frame.Now)
	}

	b := &strings.Builder{}
	b.WriteString("Tide (ft):\n")
	b.WriteString(lc.View())
	b.WriteString("\n")
	b.WriteString(tideStyle.Render("─"))
	b.WriteString(" ")
	b.WriteString(infoStyle.Render("Predicted tide"))
	if frame.Now != nil {
		b.WriteString("  ")
		b.WriteString(nowStyle.Render("│"))
		b.WriteString(" ")
		legend := "Now"
		if level := spline.Eval(*frame.Now); !math.IsNaN(level) {
			legend = fmt.Sprintf("Now ≈ %.1f ft", level)
		}
		b.WriteString(infoStyle.Render(legend))
	}
	tzName, _ := frame.Min.Zone()
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("min %.2f ft / max %.2f ft | %s", minV, maxV, tzName)))
	return b.String()
}

// drawNow overlays a vertical line at now, if now is inside the chart.
func drawNow(lc *timeserieslinechart.Model, now time.Time) {
	viewMin := lc.Model.ViewMinX()
	viewMax := lc.Model.ViewMaxX()
	if viewMax <= viewMin {
		return
	}
	xRel := (float64(now.Unix()) - viewMin) / (viewMax - viewMin)
	if xRel < 0 || xRel > 1 {
		return
	}
	col := int(math.Round(xRel * float64(lc.GraphWidth()-1)))
	col += lc.Model.Origin().X
	if lc.Model.YStep() > 0 {
		col += 1
	}
	if col < 0 || col >= lc.Canvas.Width() {
		return
	}
	for y := 0; y < lc.Model.Origin().Y; y++ {
		lc.Canvas.SetCell(canvas.Point{X: col, Y: y}, canvas.NewCellWithStyle('│', nowStyle))
	}
}
