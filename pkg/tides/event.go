package tides

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spencer-p/tidechart/pkg/noaa"
)

// Kind is High or Low tide.
type Kind uint

const (
	High Kind = iota
	Low
)

// KindOf maps a NOAA tide type flag to a Kind. Anything other than "H" is a
// low tide.
func KindOf(flag string) Kind {
	if flag == "H" {
		return High
	}
	return Low
}

func (k Kind) String() string {
	switch k {
	case High:
		return "High"
	case Low:
		return "Low"
	default:
		return "invalid"
	}
}

// Label is the table label for k.
func (k Kind) Label() string {
	return k.String() + " Tide"
}

// Event is one predicted high or low tide. It is not modified after it is
// built.
type Event struct {
	Time  time.Time
	Kind  Kind
	Level float64 // feet above MLLW
}

// Events is a list of Event in the order NOAA returned them.
type Events []Event

func (e Event) String() string {
	return fmt.Sprintf("{t: %s, kind: %s, level: %g}",
		e.Time.Format(time.RFC822), e.Kind, e.Level)
}

// NewEvent converts one raw prediction. The timestamp is assembled from its
// explicit components in loc.
func NewEvent(p noaa.Prediction, loc *time.Location) (Event, error) {
	t, err := ParseTime(p.Time, loc)
	if err != nil {
		return Event{}, err
	}
	level, err := strconv.ParseFloat(strings.TrimSpace(string(p.Height)), 64)
	if err != nil {
		return Event{}, fmt.Errorf("water height %q not a float: %w", p.Height, err)
	}
	return Event{
		Time:  t,
		Kind:  KindOf(p.Type),
		Level: level,
	}, nil
}

// FromPredictions converts a whole response. Any bad record fails the lot
// with an *InvalidResponseError.
func FromPredictions(preds noaa.Predictions, loc *time.Location) (Events, error) {
	events := make(Events, 0, len(preds))
	for i, p := range preds {
		e, err := NewEvent(p, loc)
		if err != nil {
			return nil, &InvalidResponseError{
				Reason: fmt.Sprintf("prediction %d", i),
				Err:    err,
			}
		}
		events = append(events, e)
	}
	return events, nil
}

// ParseTime reads a NOAA "YYYY-MM-DD HH:MM" timestamp as wall clock time in
// loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	datePart, clockPart, ok := strings.Cut(s, " ")
	if !ok {
		return time.Time{}, fmt.Errorf("prediction time %q has no time of day", s)
	}
	ymd := strings.Split(datePart, "-")
	hm := strings.Split(clockPart, ":")
	if len(ymd) != 3 || len(hm) != 2 {
		return time.Time{}, fmt.Errorf("prediction time %q not in form YYYY-MM-DD HH:MM", s)
	}

	var n [5]int
	for i, field := range append(ymd, hm...) {
		v, err := strconv.Atoi(field)
		if err != nil {
			return time.Time{}, fmt.Errorf("prediction time %q: bad field %q: %w", s, field, err)
		}
		n[i] = v
	}
	year, month, day, hour, minute := n[0], n[1], n[2], n[3], n[4]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || hour < 0 || minute < 0 {
		return time.Time{}, fmt.Errorf("prediction time %q out of range", s)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if t.Day() != day {
		// time.Date normalizes Feb 30 into March.
		return time.Time{}, fmt.Errorf("prediction time %q is not a real date", s)
	}
	return t, nil
}
