/*
metrics.go Counters of the model selections of a run. The launcher is a batch process, so the
registry is written once as a node exporter textfile instead of being scraped.
*/

package metrics

import (
	"time"

	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics of a run
type Registry struct {
	NodesTotal              prometheus.Gauge
	MainComponentNodesTotal prometheus.Gauge

	HVDCModelsTotal      *prometheus.CounterVec
	GeneratorModelsTotal *prometheus.CounterVec
	SVarCModelsTotal     *prometheus.CounterVec
	LoadModelsTotal      *prometheus.CounterVec

	StepDuration *prometheus.GaugeVec
	FilesWritten prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a registry holding every launcher metric
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.NodesTotal = factory.NewGauge(prometheus.GaugeOpts{
		Name: "dfl_nodes_total",
		Help: "Number of buses in the network",
	})
	r.MainComponentNodesTotal = factory.NewGauge(prometheus.GaugeOpts{
		Name: "dfl_main_component_nodes_total",
		Help: "Number of buses in the main connected component",
	})

	r.HVDCModelsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfl_hvdc_models_total",
			Help: "HVDC lines per selected model and position",
		},
		[]string{"model", "position"},
	)
	r.GeneratorModelsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfl_generator_models_total",
			Help: "Generators per selected model",
		},
		[]string{"model"},
	)
	r.SVarCModelsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfl_svarc_models_total",
			Help: "Static var compensators per selected model",
		},
		[]string{"model"},
	)
	r.LoadModelsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dfl_load_models_total",
			Help: "Loads per selected model",
		},
		[]string{"model"},
	)

	r.StepDuration = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dfl_step_duration_seconds",
			Help: "Duration of each launcher step in seconds",
		},
		[]string{"step"},
	)
	r.FilesWritten = factory.NewCounter(prometheus.CounterOpts{
		Name: "dfl_files_written_total",
		Help: "Number of output files written",
	})
	return r
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordHVDC counts the model of every HVDC line
func (r *Registry) RecordHVDC(defs algo.HVDCLineDefinitions) {
	for _, def := range defs.Lines {
		r.HVDCModelsTotal.WithLabelValues(def.Model.String(), def.Position.String()).Inc()
	}
}

// RecordGenerators counts the model of every generator
func (r *Registry) RecordGenerators(generators []algo.GeneratorDefinition) {
	for _, g := range generators {
		r.GeneratorModelsTotal.WithLabelValues(g.Model.String()).Inc()
	}
}

// RecordSVarCs counts the model of every static var compensator
func (r *Registry) RecordSVarCs(svarcs []algo.SVarCDefinition) {
	for _, s := range svarcs {
		r.SVarCModelsTotal.WithLabelValues(s.Model.String()).Inc()
	}
}

// RecordLoads counts the model of every load
func (r *Registry) RecordLoads(loads []algo.LoadDefinition) {
	for _, l := range loads {
		r.LoadModelsTotal.WithLabelValues(l.Model.String()).Inc()
	}
}

// RecordStep records the duration of a launcher step
func (r *Registry) RecordStep(step string, duration time.Duration) {
	r.StepDuration.WithLabelValues(step).Set(duration.Seconds())
}

// WriteToTextfile writes every metric to path in the text exposition format
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
