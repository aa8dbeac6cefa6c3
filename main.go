package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/spencer-p/tidechart/pkg/config"
	"github.com/spencer-p/tidechart/pkg/handlers"
	"github.com/spencer-p/tidechart/pkg/metrics"
	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/view"
	"github.com/spencer-p/tidechart/pkg/visualize"
)

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Bad environment")
	}
	if err := env.SetupLogging(os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("Bad logging config")
	}

	place := env.Place()
	page := view.NewPage(visualize.NewChart(&place))
	presenter := tides.NewPresenter(env.Client(), env.Station, place.Location, page.Sinks(),
		tides.WithAnyDate(env.AnyDate))

	// A failed first load is shown as a notice and retried by the index.
	if err := presenter.LoadPredictions(context.Background(), time.Time{}); err != nil {
		log.Warn().Err(err).Msg("Initial tide load failed")
	}

	r := mux.NewRouter().StrictSlash(true)
	r.Use(metrics.LatencyHandler)
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.Register(s, env.Prefix, presenter, page)

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Printf("Listening and serving on %s%s", srv.Addr, env.Prefix)
	log.Fatal().Err(srv.ListenAndServe()).Msg("Server stopped")
}
