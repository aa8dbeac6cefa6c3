package tides

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/tidechart/pkg/noaa"
)

var (
	saturday = noaa.Predictions{
		{Time: "2025-03-15 00:41", Height: "-0.12", Type: "L"},
		{Time: "2025-03-15 06:28", Height: "1.23", Type: "H"},
		{Time: "2025-03-15 12:50", Height: "0.05", Type: "L"},
		{Time: "2025-03-15 19:02", Height: "1.40", Type: "H"},
	}
	saturdayRows = []string{
		"Low Tide | 12:41 AM | -0.12 ft",
		"High Tide | 6:28 AM | 1.23 ft",
		"Low Tide | 12:50 PM | 0.05 ft",
		"High Tide | 7:02 PM | 1.40 ft",
	}
	fixedNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, est)
)

// fakeSource answers every query with the same predictions or error.
type fakeSource struct {
	mu      sync.Mutex
	preds   noaa.Predictions
	err     error
	queries []noaa.PredictionQuery
}

func (f *fakeSource) GetPredictions(ctx context.Context, q *noaa.PredictionQuery) (noaa.Predictions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, *q)
	return f.preds, f.err
}

func (f *fakeSource) set(preds noaa.Predictions, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preds, f.err = preds, err
}

// recorder is a table, chart and status sink at once.
type recorder struct {
	mu          sync.Mutex
	rows        []TableRow
	frame       ChartFrame
	status      Status
	tableWrites int
}

func (r *recorder) ReplaceRows(rows []TableRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
	r.tableWrites++
}

func (r *recorder) ReplaceChart(frame ChartFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = frame
}

func (r *recorder) ShowStatus(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

func (r *recorder) rowStrings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.rows))
	for i, row := range r.rows {
		out[i] = row.String()
	}
	return out
}

func newTestPresenter(src Source, opts ...Option) (*Presenter, *recorder) {
	rec := &recorder{}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewPresenter(src, noaa.PalmCity, est, Sinks{Table: rec, Chart: rec, Status: rec}, opts...), rec
}

func TestLoadPredictionsRenders(t *testing.T) {
	src := &fakeSource{preds: saturday}
	p, rec := newTestPresenter(src)

	if err := p.LoadPredictions(context.Background(), time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(saturdayRows, rec.rowStrings()); diff != "" {
		t.Errorf("rows (-want,+got):\n%s", diff)
	}
	if len(rec.frame.Points) != len(saturday) {
		t.Fatalf("got %d chart points, wanted %d", len(rec.frame.Points), len(saturday))
	}
	if first := rec.frame.Points[0]; !first.X.Equal(time.Date(2025, time.March, 15, 0, 41, 0, 0, est)) || first.Y != -0.12 {
		t.Errorf("first point = %+v", first)
	}
	if want := time.Date(2025, time.March, 15, 0, 0, 0, 0, est); !rec.frame.Min.Equal(want) {
		t.Errorf("axis min = %s, wanted %s", rec.frame.Min, want)
	}
	if want := time.Date(2025, time.March, 15, 23, 59, 0, 0, est); !rec.frame.Max.Equal(want) {
		t.Errorf("axis max = %s, wanted %s", rec.frame.Max, want)
	}
	if rec.frame.Now == nil || !rec.frame.Now.Equal(fixedNow) {
		t.Errorf("now marker = %v, wanted %s", rec.frame.Now, fixedNow)
	}
	if got := rec.status.DateLabel(); got != "Sat Mar 15 2025" {
		t.Errorf("status date = %q", got)
	}
	if len(rec.status.Notices) != 0 {
		t.Errorf("unexpected notices: %v", rec.status.Notices)
	}
	if len(src.queries) != 1 || !src.queries[0].Date.IsZero() || src.queries[0].Station != noaa.PalmCity {
		t.Errorf("unexpected queries: %+v", src.queries)
	}
	if day, ok := p.Shown(); !ok || !day.Equal(time.Date(2025, time.March, 15, 0, 0, 0, 0, est)) {
		t.Errorf("Shown() = %s, %t", day, ok)
	}
}

func TestLoadPredictionsIdempotent(t *testing.T) {
	p, rec := newTestPresenter(&fakeSource{preds: saturday})

	if err := p.LoadPredictions(context.Background(), time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstRows, firstPoints := rec.rows, rec.frame.Points

	if err := p.LoadPredictions(context.Background(), time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(firstRows, rec.rows); diff != "" {
		t.Errorf("rows changed (-first,+second):\n%s", diff)
	}
	if diff := cmp.Diff(firstPoints, rec.frame.Points); diff != "" {
		t.Errorf("points changed (-first,+second):\n%s", diff)
	}
}

func TestLoadPredictionsFallsBackToToday(t *testing.T) {
	src := &fakeSource{preds: saturday}
	p, rec := newTestPresenter(src)

	thursday := time.Date(2025, time.March, 20, 0, 0, 0, 0, est)
	if err := p.LoadPredictions(context.Background(), thursday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !src.queries[0].Date.IsZero() {
		t.Errorf("queried %s, wanted today", src.queries[0].Date)
	}
	if got := rec.status.DateLabel(); got != "Sat Mar 15 2025" {
		t.Errorf("status date = %q, wanted today", got)
	}
	if len(rec.status.Notices) != 1 {
		t.Fatalf("got notices %v, wanted one", rec.status.Notices)
	}
	var ude *UnsupportedDateError
	if !errors.As(rec.status.Notices[0], &ude) {
		t.Fatalf("notice %v is not an UnsupportedDateError", rec.status.Notices[0])
	}
	if !ude.Requested.Equal(thursday) {
		t.Errorf("requested = %s, wanted %s", ude.Requested, thursday)
	}
	if want := "tide predictions are only available for today; showing Sat Mar 15 2025 instead of Thu Mar 20 2025"; ude.Error() != want {
		t.Errorf("notice = %q", ude.Error())
	}
	if diff := cmp.Diff(saturdayRows, rec.rowStrings()); diff != "" {
		t.Errorf("rows (-want,+got):\n%s", diff)
	}
}

func TestLoadPredictionsAnyDate(t *testing.T) {
	thursdayPreds := noaa.Predictions{
		{Time: "2025-03-20 04:10", Height: "1.9", Type: "H"},
	}
	src := &fakeSource{preds: thursdayPreds}
	p, rec := newTestPresenter(src, WithAnyDate(true))

	thursday := time.Date(2025, time.March, 20, 15, 0, 0, 0, est)
	if err := p.LoadPredictions(context.Background(), thursday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2025, time.March, 20, 0, 0, 0, 0, est); !src.queries[0].Date.Equal(want) {
		t.Errorf("queried %s, wanted %s", src.queries[0].Date, want)
	}
	if rec.frame.Now != nil {
		t.Errorf("now marked on a day that is not today")
	}
	if want := time.Date(2025, time.March, 20, 23, 59, 0, 0, est); !rec.frame.Max.Equal(want) {
		t.Errorf("axis max = %s, wanted %s", rec.frame.Max, want)
	}
	if len(rec.status.Notices) != 0 {
		t.Errorf("unexpected notices: %v", rec.status.Notices)
	}
}

func TestLoadPredictionsFailureKeepsRows(t *testing.T) {
	table := []struct {
		name  string
		preds noaa.Predictions
		err   error
		check func(error) bool
	}{{
		name: "missing prediction list",
		err:  &noaa.InvalidResponseError{Reason: "no prediction list"},
		check: func(err error) bool {
			var ie *InvalidResponseError
			return errors.As(err, &ie)
		},
	}, {
		name: "server error",
		err:  &noaa.FetchError{Status: 503},
		check: func(err error) bool {
			var fe *FetchError
			return errors.As(err, &fe)
		},
	}, {
		name:  "unreadable record",
		preds: noaa.Predictions{{Time: "yesterday", Height: "1", Type: "H"}},
		check: func(err error) bool {
			var ie *InvalidResponseError
			return errors.As(err, &ie)
		},
	}}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{preds: saturday}
			p, rec := newTestPresenter(src)
			if err := p.LoadPredictions(context.Background(), time.Time{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			framed := rec.frame

			src.set(tc.preds, tc.err)
			err := p.LoadPredictions(context.Background(), time.Time{})
			if !tc.check(err) {
				t.Fatalf("unexpected error type: %v", err)
			}

			if diff := cmp.Diff(saturdayRows, rec.rowStrings()); diff != "" {
				t.Errorf("rows changed (-want,+got):\n%s", diff)
			}
			if rec.tableWrites != 1 {
				t.Errorf("table written %d times, wanted once", rec.tableWrites)
			}
			if diff := cmp.Diff(framed, rec.frame); diff != "" {
				t.Errorf("chart changed (-want,+got):\n%s", diff)
			}
			if got := rec.status.DateLabel(); got != "Sat Mar 15 2025" {
				t.Errorf("status date = %q, wanted prior day", got)
			}
			if len(rec.status.Notices) != 1 || !tc.check(rec.status.Notices[0]) {
				t.Errorf("notices = %v", rec.status.Notices)
			}
		})
	}
}

func TestLoadPredictionsFailureBeforeAnyRender(t *testing.T) {
	p, rec := newTestPresenter(&fakeSource{err: &noaa.FetchError{Err: context.DeadlineExceeded}})
	err := p.LoadPredictions(context.Background(), time.Time{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, wanted deadline exceeded", err)
	}
	if rec.rows != nil || rec.status.DateLabel() != "" {
		t.Errorf("rendered something: %v %q", rec.rows, rec.status.DateLabel())
	}
	if _, ok := p.Shown(); ok {
		t.Errorf("Shown() after failure")
	}
}

// gatedSource blocks every query until the test answers it.
type gatedSource struct {
	calls chan gatedCall
}

type gatedCall struct {
	query noaa.PredictionQuery
	reply chan noaa.Predictions
}

func (g *gatedSource) GetPredictions(ctx context.Context, q *noaa.PredictionQuery) (noaa.Predictions, error) {
	call := gatedCall{query: *q, reply: make(chan noaa.Predictions)}
	g.calls <- call
	return <-call.reply, nil
}

func TestSupersededLoadIsDropped(t *testing.T) {
	src := &gatedSource{calls: make(chan gatedCall)}
	p, rec := newTestPresenter(src)
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- p.LoadPredictions(ctx, time.Time{}) }()
	callA := <-src.calls

	errB := make(chan error, 1)
	go func() { errB <- p.Refresh(ctx, "") }()
	callB := <-src.calls

	predsB := saturday[:2]
	callB.reply <- predsB
	if err := <-errB; err != nil {
		t.Fatalf("B failed: %v", err)
	}

	callA.reply <- saturday
	if err := <-errA; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("A returned %v, wanted ErrSuperseded", err)
	}

	if diff := cmp.Diff(saturdayRows[:2], rec.rowStrings()); diff != "" {
		t.Errorf("rows should be B's (-want,+got):\n%s", diff)
	}
	if len(rec.frame.Points) != 2 {
		t.Errorf("chart has %d points, wanted B's 2", len(rec.frame.Points))
	}
}

func TestLoadsInTriggerOrder(t *testing.T) {
	src := &gatedSource{calls: make(chan gatedCall)}
	p, rec := newTestPresenter(src)
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- p.LoadPredictions(ctx, time.Time{}) }()
	callA := <-src.calls

	errB := make(chan error, 1)
	go func() { errB <- p.LoadPredictions(ctx, time.Time{}) }()
	callB := <-src.calls

	callA.reply <- saturday[:1]
	if err := <-errA; err != nil {
		t.Fatalf("A failed: %v", err)
	}
	callB.reply <- saturday[:3]
	if err := <-errB; err != nil {
		t.Fatalf("B failed: %v", err)
	}
	if diff := cmp.Diff(saturdayRows[:3], rec.rowStrings()); diff != "" {
		t.Errorf("rows should be B's (-want,+got):\n%s", diff)
	}
}

func TestRefresh(t *testing.T) {
	table := []struct {
		input       string
		wantNotices int
	}{
		{input: "", wantNotices: 0},
		{input: "   ", wantNotices: 0},
		{input: "not a date", wantNotices: 0},
		{input: "03/16/2025", wantNotices: 0},
		{input: "2025-03-15", wantNotices: 0},
		{input: "2025-03-16", wantNotices: 1},
	}

	for _, tc := range table {
		t.Run(tc.input, func(t *testing.T) {
			src := &fakeSource{preds: saturday}
			p, rec := newTestPresenter(src)
			if err := p.Refresh(context.Background(), tc.input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !src.queries[0].Date.IsZero() {
				t.Errorf("queried %s, wanted today", src.queries[0].Date)
			}
			if got := rec.status.DateLabel(); got != "Sat Mar 15 2025" {
				t.Errorf("status date = %q", got)
			}
			if len(rec.status.Notices) != tc.wantNotices {
				t.Errorf("got notices %v, wanted %d", rec.status.Notices, tc.wantNotices)
			}
		})
	}
}

func TestStale(t *testing.T) {
	now := fixedNow
	src := &fakeSource{preds: saturday}
	rec := &recorder{}
	p := NewPresenter(src, noaa.PalmCity, est, Sinks{Table: rec, Chart: rec, Status: rec},
		WithClock(func() time.Time { return now }), WithAnyDate(true))
	ctx := context.Background()

	if !p.Stale() {
		t.Errorf("nothing rendered, but not stale")
	}
	if err := p.LoadPredictions(ctx, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stale() {
		t.Errorf("stale right after loading today")
	}

	now = fixedNow.Add(13 * time.Hour)
	if p.Stale() {
		t.Errorf("stale later the same day")
	}
	now = fixedNow.Add(48 * time.Hour)
	if !p.Stale() {
		t.Errorf("today's tides still current two days later")
	}

	// A day the user picked stays picked when the date changes.
	thursday := time.Date(2025, time.March, 20, 0, 0, 0, 0, est)
	if err := p.LoadPredictions(ctx, thursday); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now = fixedNow.Add(72 * time.Hour)
	if p.Stale() {
		t.Errorf("picked day became stale")
	}
}

// batchLock notes whether it is held.
type batchLock struct {
	sync.Mutex
	held bool
}

func (l *batchLock) Lock() {
	l.Mutex.Lock()
	l.held = true
}

func (l *batchLock) Unlock() {
	l.held = false
	l.Mutex.Unlock()
}

// batchedRecorder counts writes made without the batch lock held.
type batchedRecorder struct {
	recorder
	batch    *batchLock
	unlocked int
}

func (r *batchedRecorder) check() {
	if !r.batch.held {
		r.unlocked++
	}
}

func (r *batchedRecorder) ReplaceRows(rows []TableRow) {
	r.check()
	r.recorder.ReplaceRows(rows)
}

func (r *batchedRecorder) ReplaceChart(frame ChartFrame) {
	r.check()
	r.recorder.ReplaceChart(frame)
}

func (r *batchedRecorder) ShowStatus(s Status) {
	r.check()
	r.recorder.ShowStatus(s)
}

func TestSinkWritesHoldBatch(t *testing.T) {
	src := &fakeSource{preds: saturday}
	rec := &batchedRecorder{batch: &batchLock{}}
	p := NewPresenter(src, noaa.PalmCity, est, Sinks{Table: rec, Chart: rec, Status: rec, Batch: rec.batch},
		WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	if err := p.LoadPredictions(ctx, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.set(nil, &noaa.FetchError{Status: 500})
	if err := p.LoadPredictions(ctx, time.Time{}); err == nil {
		t.Fatalf("failed fetch returned no error")
	}

	if rec.unlocked != 0 {
		t.Errorf("%d sink writes without the batch lock", rec.unlocked)
	}
	if rec.tableWrites != 1 {
		t.Errorf("got %d table writes, wanted 1", rec.tableWrites)
	}
	if rec.batch.held {
		t.Errorf("batch lock still held after loads")
	}
}
