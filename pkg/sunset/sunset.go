package sunset

import (
	"math"
	"time"

	"github.com/spencer-p/tidechart/pkg/timetricks"

	"github.com/keep94/sunrise"
)

// GetSunEvents returns a list of ordered sun events from the starting day for
// duration in the given place. The first result will always be a sunrise.
func GetSunEvents(start time.Time, duration time.Duration, place Place) SunEvents {
	start = start.In(place.Location)

	var s sunrise.Sunrise
	s.Around(place.Lat, place.Long, start)

	// Make sure we start with the correct day
	// The sunrise package is not very clean with its dates.
	want := timetricks.UniqueDay(start)
	for i := 0; i < 3; i++ {
		got := timetricks.UniqueDay(s.Sunrise().In(place.Location))
		if got == want {
			break
		} else if got < want {
			s.AddDays(1)
		} else {
			s.AddDays(-1)
		}
	}

	// Get sunrises and sunsets for the given number of days.
	numDays := int(math.Ceil(duration.Hours() / 24))
	ret := make(SunEvents, numDays*2)
	for i := 0; i < numDays*2; i += 2 {
		ret[i] = SunEvent{s.Sunrise().In(place.Location), Sunrise}
		ret[i+1] = SunEvent{s.Sunset().In(place.Location), Sunset}
		s.AddDays(1)
	}
	return ret
}

// Daylight returns the sunrise and sunset on the calendar day of day.
func Daylight(day time.Time, place Place) (rise, set time.Time) {
	events := GetSunEvents(day, 24*time.Hour, place)
	return events[0].Time, events[1].Time
}
