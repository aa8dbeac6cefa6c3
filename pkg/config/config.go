// Package config reads tidechart's environment and sets up logging.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spencer-p/tidechart/pkg/noaa"
	"github.com/spencer-p/tidechart/pkg/sunset"
)

// stationPlaces locates each supported station. Predictions are in station
// local time, so the place's zone is also the zone they are parsed in.
var stationPlaces = map[noaa.Station]sunset.Place{
	noaa.PalmCity:  sunset.PalmCity,
	noaa.SantaCruz: sunset.SantaCruz,
}

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`

	Station         noaa.Station  `default:"8722357"`
	UpstreamURL     string        `envconfig:"upstream_url" default:"https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"`
	UpstreamTimeout time.Duration `envconfig:"upstream_timeout" default:"10s"`
	// AnyDate fetches requested days other than today instead of falling
	// back to today.
	AnyDate bool `envconfig:"any_date" default:"false"`

	LogLevel  string `envconfig:"log_level" default:"info"`
	LogFormat string `envconfig:"log_format" default:"console"`
}

// Load reads the environment.
func Load() (Config, error) {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		return Config{}, err
	}
	if !strings.HasPrefix(env.Prefix, "/") {
		return Config{}, fmt.Errorf("PREFIX %q must start with /", env.Prefix)
	}
	if _, ok := stationPlaces[env.Station]; !ok {
		return Config{}, fmt.Errorf("STATION %s has no known location", env.Station)
	}
	return env, nil
}

// Place is where the configured station is, including its time zone.
func (c Config) Place() sunset.Place {
	return stationPlaces[c.Station]
}

// Client returns a NOAA client for the configured upstream.
func (c Config) Client() *noaa.Client {
	return noaa.NewClient(c.UpstreamURL, c.UpstreamTimeout)
}

// SetupLogging points the global logger at w with the configured level and
// format.
func (c Config) SetupLogging(w io.Writer) error {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	switch c.LogFormat {
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// LogToFile sends logs to path, or discards them if path is empty. Terminal
// front ends use it to keep logs off the screen.
func (c Config) LogToFile(path string) (io.Closer, error) {
	if path == "" {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	if err := c.SetupLogging(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
