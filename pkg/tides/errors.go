package tides

import (
	"errors"
	"fmt"
	"time"

	"github.com/spencer-p/tidechart/pkg/noaa"
	"github.com/spencer-p/tidechart/pkg/timetricks"
)

type (
	// FetchError is a transport failure or non-success status upstream.
	FetchError = noaa.FetchError
	// InvalidResponseError is a missing or malformed prediction list.
	InvalidResponseError = noaa.InvalidResponseError
)

// ErrSuperseded is returned by a load whose result arrived after a newer
// load's result had already been rendered. Its result is dropped.
var ErrSuperseded = errors.New("tide load superseded by a newer request")

// UnsupportedDateError is the notice shown when the requested day cannot be
// fetched and Effective is shown instead.
type UnsupportedDateError struct {
	Requested time.Time
	Effective time.Time
}

func (e *UnsupportedDateError) Error() string {
	return fmt.Sprintf("tide predictions are only available for today; showing %s instead of %s",
		e.Effective.Format(timetricks.StatusFormat),
		e.Requested.Format(timetricks.StatusFormat))
}
