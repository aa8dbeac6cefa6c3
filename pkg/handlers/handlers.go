package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/spencer-p/tidechart/pkg/tides"
	"github.com/spencer-p/tidechart/pkg/timetricks"
	"github.com/spencer-p/tidechart/pkg/view"
)

//go:embed static
var content embed.FS

// TemplateInput is what the index template renders.
type TemplateInput struct {
	Snapshot   view.Snapshot
	InputDate  string
	RefreshURL string
}

type server struct {
	prefix    string
	presenter *tides.Presenter
	page      *view.Page
}

// Register adds the dashboard routes to r. prefix is the path r is mounted
// on, used to build links and redirects.
func Register(r *mux.Router, prefix string, p *tides.Presenter, page *view.Page) {
	s := &server{
		prefix:    prefix,
		presenter: p,
		page:      page,
	}

	r.Handle("/", s.makeIndexHandler()).Methods(http.MethodGet)
	r.HandleFunc("/refresh", s.serveRefresh).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/chart.svg", s.serveChart).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/tides", s.serveAPI).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
}

// loadContext detaches a load from its request. A load that outlives its
// client still renders for everyone else; the NOAA client's timeout bounds it.
func loadContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *server) makeIndexHandler() http.Handler {
	indexTemplate := template.Must(template.ParseFS(content, "static/index.template.html"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.presenter.Stale() {
			// Nothing rendered yet, or today has turned into tomorrow.
			if err := s.presenter.LoadPredictions(loadContext(r), time.Time{}); err != nil {
				log.Printf("Load from index failed: %v", err)
			}
		}
		snap := s.page.Snapshot(true)

		input := TemplateInput{
			Snapshot:   snap,
			InputDate:  snap.Day,
			RefreshURL: pathJoinPreservePrefix(s.prefix, "refresh"),
		}
		if input.InputDate == "" {
			input.InputDate = s.presenter.Today().Format(timetricks.InputFormat)
		}

		w.Header().Add("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if err := indexTemplate.Execute(w, input); err != nil {
			log.Printf("Failed to execute template: %v", err)
		}
	})
}

func (s *server) serveRefresh(w http.ResponseWriter, r *http.Request) {
	date := r.FormValue("date")
	if err := s.presenter.Refresh(loadContext(r), date); err != nil {
		// Already shown as a notice on the page.
		log.Debug().Err(err).Str("date", date).Msg("Refresh did not render")
	}
	http.Redirect(w, r, pathJoinPreservePrefix(s.prefix, "/"), http.StatusSeeOther)
}

func (s *server) serveChart(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := s.page.Chart().Encode(w); err != nil {
		log.Printf("Failed to encode chart: %v", err)
	}
}

func (s *server) serveAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s.page.Snapshot(false)); err != nil {
		log.Printf("Failed to encode JSON result: %+v", err)
	}
}

func pathJoinPreservePrefix(prefix string, suffix string) string {
	trimmedPrefix := path.Join(prefix, "")
	result := path.Join(prefix, suffix)
	if result == trimmedPrefix {
		return prefix
	}
	return result
}
