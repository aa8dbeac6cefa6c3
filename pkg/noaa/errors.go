package noaa

import (
	"fmt"
	"net/http"
)

// FetchError reports a transport failure or a non-success HTTP status from
// NOAA. Status is zero when no response was received.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch tide predictions: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("fetch tide predictions: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// InvalidResponseError reports a response that does not carry a usable list
// of predictions.
type InvalidResponseError struct {
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid tide response: %s: %v", e.Reason, e.Err)
	}
	return "invalid tide response: " + e.Reason
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}
