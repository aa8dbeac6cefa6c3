package noaa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	NOAA_URL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	TIME_FMT = "20060102"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var validate = validator.New()

// Client fetches predictions from a NOAA datagetter endpoint.
type Client struct {
	// BaseURL defaults to NOAA_URL.
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client for baseURL with a request timeout. An empty
// baseURL means NOAA_URL; a zero timeout means ten seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = NOAA_URL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// DefaultClient talks to the production NOAA endpoint.
var DefaultClient = NewClient(NOAA_URL, defaultTimeout)

// GetPredictions queries the production endpoint with DefaultClient.
func GetPredictions(ctx context.Context, q *PredictionQuery) (Predictions, error) {
	return DefaultClient.GetPredictions(ctx, q)
}

// GetPredictions performs q. Unusable base URLs, transport failures and
// non-2xx responses are returned as *FetchError; anything that does not decode to a list of
// complete prediction records is returned as *InvalidResponseError.
func (c *Client) GetPredictions(ctx context.Context, q *PredictionQuery) (Predictions, error) {
	addr, err := q.url(c.BaseURL)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &FetchError{
			Status: resp.StatusCode,
			Err:    errors.New("unexpected status: " + resp.Status),
		}
	}

	return decode(io.LimitReader(resp.Body, maxBodyBytes))
}

func decode(r io.Reader) (Predictions, error) {
	var result NOAAResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, &InvalidResponseError{Reason: "malformed JSON", Err: err}
	}
	if result.Predictions == nil {
		if result.Error != nil {
			return nil, &InvalidResponseError{Reason: "NOAA error: " + result.Error.Message}
		}
		return nil, &InvalidResponseError{Reason: "no prediction list"}
	}
	if err := validate.Struct(&result); err != nil {
		return nil, &InvalidResponseError{Reason: "missing prediction fields", Err: err}
	}
	return result.Predictions, nil
}

func (q *PredictionQuery) url(base string) (*url.URL, error) {
	addr, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bad NOAA url %q: %w", base, err)
	}
	addr.RawQuery = q.build().Encode()
	return addr, nil
}

func (q *PredictionQuery) build() url.Values {
	vals := make(url.Values)
	if q.Date.IsZero() {
		vals.Add("date", "today")
	} else {
		vals.Add("begin_date", q.Date.Format(TIME_FMT))
		vals.Add("end_date", q.Date.Format(TIME_FMT))
	}
	vals.Add("station", q.Station.String())
	vals.Add("product", "predictions")
	vals.Add("datum", "MLLW")
	vals.Add("time_zone", "lst_ldt")
	vals.Add("interval", "hilo")
	vals.Add("units", "english")
	vals.Add("format", "json")
	return vals
}
