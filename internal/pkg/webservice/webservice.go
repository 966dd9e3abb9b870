/*
webservice.go Read only HTTP view of the last launcher run.
*/

package webservice

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ohowland/dfl_launcher/internal/pkg/root"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const contentType = "application/json; charset=UTF-8"

// Source provides the results served by the router.
type Source interface {
	Results() (root.Results, bool)
}

type service struct {
	source Source
}

type status struct {
	Ready bool `json:"ready"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewRouter returns the routes of the results browser. gatherer may be nil,
// in which case /metrics is not served.
func NewRouter(source Source, gatherer prometheus.Gatherer) *mux.Router {
	s := service{source: source}
	r := mux.NewRouter()
	r.HandleFunc("/", s.BaseHandler).Methods("GET")
	r.HandleFunc("/summary", s.SummaryHandler).Methods("GET")
	r.HandleFunc("/hvdc", s.HVDCListHandler).Methods("GET")
	r.HandleFunc("/hvdc/{id}", s.HVDCHandler).Methods("GET")
	r.HandleFunc("/generators", s.GeneratorListHandler).Methods("GET")
	r.HandleFunc("/generators/{id}", s.GeneratorHandler).Methods("GET")
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return r
}

// Serve listens on port until ctx is cancelled.
func Serve(ctx context.Context, port int, router http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Println("[Webservice] Starting Server on Port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	log.Println("[Webservice] Server Shutdown")
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", contentType)
	body, err := json.Marshal(v)
	if err != nil {
		log.Println("malformed JSON:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	w.Write(body)
}

// results answers 503 until a run has completed.
func (s service) results(w http.ResponseWriter) (root.Results, bool) {
	res, ok := s.source.Results()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "no completed run"})
	}
	return res, ok
}

func (s service) BaseHandler(w http.ResponseWriter, r *http.Request) {
	_, ok := s.source.Results()
	writeJSON(w, http.StatusOK, status{Ready: ok})
}

func (s service) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Summary)
}

// HVDCListHandler lists the line ids in ascending order.
func (s service) HVDCListHandler(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results(w)
	if !ok {
		return
	}
	ids := make([]string, 0, len(res.HVDC.Lines))
	for id := range res.HVDC.Lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, ids)
}

func (s service) HVDCHandler(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results(w)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	def, ok := res.HVDC.Lines[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown hvdc line " + id})
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// GeneratorListHandler lists the generator ids in visitation order.
func (s service) GeneratorListHandler(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results(w)
	if !ok {
		return
	}
	ids := make([]string, 0, len(res.Generators))
	for _, g := range res.Generators {
		ids = append(ids, g.ID)
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s service) GeneratorHandler(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results(w)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	for _, g := range res.Generators {
		if g.ID == id {
			writeJSON(w, http.StatusOK, g)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown generator " + id})
}
