package tides

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/spencer-p/tidechart/pkg/metrics"
	"github.com/spencer-p/tidechart/pkg/noaa"
	"github.com/spencer-p/tidechart/pkg/timetricks"
)

// Source fetches raw predictions. *noaa.Client is a Source.
type Source interface {
	GetPredictions(ctx context.Context, q *noaa.PredictionQuery) (noaa.Predictions, error)
}

var _ Source = (*noaa.Client)(nil)

// Sinks are the render targets a Presenter owns. Only the Presenter writes
// to them, one load at a time.
type Sinks struct {
	Table  TableSink
	Chart  ChartSink
	Status StatusSink

	// Batch, if set, is held while one load writes to the sinks. Readers
	// that hold it see all of one load's output or none of it.
	Batch sync.Locker
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Presenter) {
		p.now = now
	}
}

// WithAnyDate lets loads fetch days other than today instead of falling back
// to today.
func WithAnyDate(enabled bool) Option {
	return func(p *Presenter) {
		p.anyDate = enabled
	}
}

// Presenter loads one day of tide predictions for a fixed station and renders
// them into its sinks.
//
// Every load is numbered when it is triggered. An outcome is rendered only if
// it is newer than the outcome currently rendered, so a slow response can
// never overwrite the result of a later trigger.
type Presenter struct {
	source  Source
	station noaa.Station
	loc     *time.Location
	sinks   Sinks
	now     func() time.Time
	anyDate bool

	issued atomic.Uint64

	mu      sync.Mutex
	applied uint64    // sequence of the outcome currently rendered
	shown   time.Time // day currently in the table and chart
	live    bool      // shown was today when it loaded
}

// NewPresenter returns a Presenter for station, whose local time zone is loc.
func NewPresenter(source Source, station noaa.Station, loc *time.Location, sinks Sinks, opts ...Option) *Presenter {
	p := &Presenter{
		source:  source,
		station: station,
		loc:     loc,
		sinks:   sinks,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today is the current day in the station's time zone.
func (p *Presenter) Today() time.Time {
	return timetricks.TrimClock(p.now().In(p.loc))
}

// Stale reports whether today should be loaded again: nothing has rendered
// yet, or today's tides rendered and the date has since changed.
func (p *Presenter) Stale() bool {
	today := p.Today()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shown.IsZero() {
		return true
	}
	return p.live && !timetricks.SameDay(p.shown, today)
}

// Shown returns the day currently rendered, and false if no load has
// succeeded yet.
func (p *Presenter) Shown() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown, !p.shown.IsZero()
}

// Refresh loads the day typed by a user as "YYYY-MM-DD". Empty or unreadable
// input loads today.
func (p *Presenter) Refresh(ctx context.Context, input string) error {
	var target time.Time
	if strings.TrimSpace(input) != "" {
		day, err := timetricks.ParseDay(input, p.loc)
		if err != nil {
			log.Warn().Str("input", input).Err(err).Msg("Unreadable date, loading today")
		} else {
			target = day
		}
	}
	return p.LoadPredictions(ctx, target)
}

// LoadPredictions fetches and renders predictions for the calendar day of
// target. A zero target means today.
//
// On failure nothing but the status notices change, and the error is
// returned as well as shown. ErrSuperseded means a newer trigger's outcome
// was already rendered and this one was dropped.
func (p *Presenter) LoadPredictions(ctx context.Context, target time.Time) error {
	seq := p.issued.Add(1)
	logger := log.With().
		Str("load", uuid.NewString()).
		Uint64("seq", seq).
		Stringer("station", p.station).
		Logger()

	today := p.Today()
	day, notice := p.effectiveDay(target, today)
	if notice != nil {
		logger.Info().Err(notice).Msg("Requested day unavailable")
		metrics.ObserveFallback()
	}

	q := noaa.PredictionQuery{Station: p.station}
	if !timetricks.SameDay(day, today) {
		q.Date = day
	}

	start := time.Now()
	preds, err := p.source.GetPredictions(ctx, &q)
	metrics.ObserveUpstreamLatency(time.Since(start).Seconds())

	var events Events
	if err == nil {
		events, err = FromPredictions(preds, p.loc)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.applied {
		logger.Debug().AnErr("outcome", err).Msg("Dropping superseded tide load")
		metrics.ObserveLoad(metrics.LoadSuperseded)
		return ErrSuperseded
	}
	p.applied = seq

	if b := p.sinks.Batch; b != nil {
		b.Lock()
		defer b.Unlock()
	}

	if err != nil {
		logger.Error().Err(err).Str("date", timetricks.UniqueDay(day)).Msg("Failed to load tide predictions")
		metrics.ObserveLoad(outcome(err))
		p.sinks.Status.ShowStatus(Status{
			Date:    p.shown,
			Notices: notices(notice, err),
		})
		return err
	}

	p.shown = day
	p.live = timetricks.SameDay(day, today)
	p.sinks.Table.ReplaceRows(Rows(events))
	p.sinks.Chart.ReplaceChart(Frame(events, day, p.now()))
	p.sinks.Status.ShowStatus(Status{
		Date:    day,
		Notices: notices(notice),
	})
	logger.Info().
		Str("date", timetricks.UniqueDay(day)).
		Int("events", len(events)).
		Msg("Rendered tide predictions")
	metrics.ObserveLoad(metrics.LoadOK)
	return nil
}

// effectiveDay picks the day to load for target, with a notice if target had
// to be replaced by today.
func (p *Presenter) effectiveDay(target, today time.Time) (time.Time, error) {
	if target.IsZero() {
		return today, nil
	}
	requested := timetricks.InLocation(target, p.loc)
	if timetricks.SameDay(requested, today) {
		return today, nil
	}
	if p.anyDate {
		return requested, nil
	}
	return today, &UnsupportedDateError{Requested: requested, Effective: today}
}

func notices(errs ...error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func outcome(err error) string {
	var fe *FetchError
	var ie *InvalidResponseError
	switch {
	case errors.As(err, &fe):
		return metrics.LoadFetchError
	case errors.As(err, &ie):
		return metrics.LoadInvalidResponse
	default:
		return metrics.LoadError
	}
}
