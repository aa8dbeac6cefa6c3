package noaa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Prediction holds a single raw tide event prediction as NOAA encodes it.
type Prediction struct {
	// Local time of tide prediction, "YYYY-MM-DD HH:MM".
	Time string `json:"t" validate:"required"`
	// Height in feet.
	Height Value `json:"v" validate:"required"`
	// High or Low tide, "H" or "L".
	Type string `json:"type" validate:"required"`
}

// Predictions is a time series of Prediction.
type Predictions []Prediction

// NOAAResult is the data type returned by the NOAA API. Only the
// predictions/type shape is understood; the older data/hi_lo shape fails
// validation.
type NOAAResult struct {
	Predictions Predictions `json:"predictions" validate:"required,dive"`
	Error       *NOAAError  `json:"error,omitempty"`
}

// NOAAError is the envelope NOAA uses to explain a rejected query.
type NOAAError struct {
	Message string `json:"message"`
}

// PredictionQuery is used to query hi/lo tide data at a station for one day;
// see Client.GetPredictions. A zero Date asks NOAA for "today" at the
// station.
type PredictionQuery struct {
	Date    time.Time
	Station Station
}

// Station is a NOAA CO-OPS station identifier.
type Station int

const (
	SantaCruz Station = 9413745
	PalmCity  Station = 8722357
)

func (s Station) String() string {
	return strconv.Itoa(int(s))
}

// Value is a water height as NOAA sent it. NOAA quotes the number, but a bare
// JSON number is accepted too.
type Value string

var _ json.Unmarshaler = new(Value)

func (v *Value) UnmarshalJSON(buf []byte) error {
	buf = bytes.TrimSpace(buf)
	if bytes.Equal(buf, []byte("null")) {
		*v = ""
		return nil
	}
	if len(buf) > 0 && buf[0] == '"' {
		var s string
		if err := json.Unmarshal(buf, &s); err != nil {
			return fmt.Errorf("water height %q not string: %w", buf, err)
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(buf, &n); err != nil {
		return fmt.Errorf("water height %q not a string or number: %w", buf, err)
	}
	*v = Value(n.String())
	return nil
}

func (p Prediction) String() string {
	return fmt.Sprintf("{t: %s, v: %s, type: %s}", p.Time, p.Height, p.Type)
}
