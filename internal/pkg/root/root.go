/*
root.go The launcher system. It loads the input documents, runs the node algorithms over the
main connected component, writes the outputs and publishes every definition to the datastreams.
*/

package root

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/ohowland/dfl_launcher/internal/pkg/assembling"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/metrics"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
	"github.com/ohowland/dfl_launcher/internal/pkg/outputs"
	"github.com/viant/afs"
)

// Summary describes a finished run.
type Summary struct {
	Nodes                   int               `json:"nodes"`
	MainComponentNodes      int               `json:"mainComponentNodes"`
	SlackNode               string            `json:"slackNode"`
	HVDCLines               int               `json:"hvdcLines"`
	Generators              int               `json:"generators"`
	SVarCs                  int               `json:"svarcs"`
	Loads                   int               `json:"loads"`
	NbShunts                map[string]int    `json:"nbShunts"`
	BusesRegulatedBySeveral map[string]string `json:"busesRegulatedBySeveral"`
	FilesWritten            int               `json:"filesWritten"`
}

// Results holds every definition computed by a run.
type Results struct {
	HVDC       algo.HVDCLineDefinitions   `json:"hvdc"`
	Generators []algo.GeneratorDefinition `json:"generators"`
	SVarCs     []algo.SVarCDefinition     `json:"svarcs"`
	Loads      []algo.LoadDefinition      `json:"loads"`
	Summary    Summary                    `json:"summary"`
}

// System is the root node of the launcher
type System struct {
	pid       uuid.UUID
	cfg       config.Config
	fs        afs.Service
	publisher *msg.PubSub
	metrics   *metrics.Registry

	mux     sync.Mutex
	results *Results
}

// NewSystem returns a system that has not run yet.
func NewSystem(cfg config.Config, fs afs.Service) (*System, error) {
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	return &System{
		pid:       pid,
		cfg:       cfg,
		fs:        fs,
		publisher: msg.NewPublisher(pid),
		metrics:   metrics.NewRegistry(),
	}, nil
}

// PID is the sender of every published definition.
func (s *System) PID() uuid.UUID {
	return s.pid
}

// Subscribe to the definitions published by Run.
func (s *System) Subscribe(pid uuid.UUID, topic msg.Topic) (<-chan msg.Msg, error) {
	return s.publisher.Subscribe(pid, topic)
}

// Unsubscribe removes every subscription of pid.
func (s *System) Unsubscribe(pid uuid.UUID) {
	s.publisher.Unsubscribe(pid)
}

// Metrics exposes the registry filled by Run.
func (s *System) Metrics() *metrics.Registry {
	return s.metrics
}

// Results returns the outcome of the last run, false before a run completes.
func (s *System) Results() (Results, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.results == nil {
		return Results{}, false
	}
	return *s.results, true
}

// Run executes the launcher once. Subscribers are closed when Run returns,
// successful or not.
func (s *System) Run(ctx context.Context) error {
	defer s.publisher.Close()

	start := time.Now()
	manager, err := network.LoadDocument(ctx, s.fs, s.cfg.Network)
	if err != nil {
		return err
	}
	db, err := assembling.Load(ctx, s.fs, s.cfg.Assembling, s.cfg.Setting)
	if err != nil {
		return err
	}
	s.metrics.RecordStep("load", time.Since(start))

	start = time.Now()
	results, err := s.computeModels(manager, db)
	if err != nil {
		return err
	}
	s.metrics.RecordStep("algorithms", time.Since(start))

	start = time.Now()
	files, err := s.writeOutputs(ctx, results, db)
	if err != nil {
		return err
	}
	results.Summary.FilesWritten = files
	s.metrics.FilesWritten.Add(float64(files))
	s.metrics.RecordStep("outputs", time.Since(start))

	s.recordMetrics(results)
	if s.cfg.MetricsFile != "" {
		if err := s.metrics.WriteToTextfile(s.cfg.MetricsFile); err != nil {
			return err
		}
	}

	s.mux.Lock()
	s.results = &results
	s.mux.Unlock()

	s.publish(results)
	log.Printf("[System] run complete: %d hvdc lines, %d generators, %d files",
		results.Summary.HVDCLines, results.Summary.Generators, files)
	return nil
}

func (s *System) computeModels(manager *network.Manager, db *assembling.Database) (Results, error) {
	nodes := manager.Nodes()
	mainComponent := algo.MainConnexComponent(nodes)
	log.Printf("[System] main connected component holds %d of %d nodes", len(mainComponent), len(nodes))

	regulation := manager.BusRegulationMap()
	switches := manager.SwitchConnector()

	slack := algo.NewSlackNodeAlgorithm()
	hvdc := algo.NewHVDCAlgorithm(algo.HVDCOptions{
		InfiniteReactiveLimits: s.cfg.InfiniteReactiveLimits,
		Regulation:             regulation,
		Switches:               switches,
		VSCConverters:          manager.VSCConverters(),
		Rpcl2Lines:             db.HvdcLinesInSVC(),
		Rpcl2Buses:             db.Rpcl2Buses(),
	})
	generators := algo.NewGeneratorAlgorithm(algo.GeneratorOptions{
		InfiniteReactiveLimits: s.cfg.InfiniteReactiveLimits,
		TfoVoltageLevel:        s.cfg.TfoVoltageLevel,
		Regulation:             regulation,
		Switches:               switches,
		GeneratorsInSVC:        db.GeneratorsInSVC(),
	})
	svarcs := algo.NewSVarCAlgorithm()
	loads := algo.NewLoadAlgorithm(s.cfg.DsoVoltageLevel)
	shunts := algo.NewShuntCounterAlgorithm()

	driver := algo.NewDriver(slack, hvdc, generators, svarcs, loads, shunts)
	if err := driver.Run(mainComponent); err != nil {
		return Results{}, err
	}

	defs, err := hvdc.Definitions()
	if err != nil {
		return Results{}, err
	}

	results := Results{
		HVDC:       defs,
		Generators: generators.Generators(),
		SVarCs:     svarcs.SVarCs(),
		Loads:      loads.Loads(),
		Summary: Summary{
			Nodes:                   len(nodes),
			MainComponentNodes:      len(mainComponent),
			HVDCLines:               len(defs.Lines),
			NbShunts:                shunts.NbShunts(),
			BusesRegulatedBySeveral: generators.BusesRegulatedBySeveral(),
		},
	}
	results.Summary.Generators = len(results.Generators)
	results.Summary.SVarCs = len(results.SVarCs)
	results.Summary.Loads = len(results.Loads)
	if node, ok := slack.SlackNode(); ok {
		results.Summary.SlackNode = node.ID
	}
	if !generators.AtLeastOneRegulating() {
		log.Println("[System] no generator with a dynamic model regulates voltage")
	}
	return results, nil
}

func (s *System) writeOutputs(ctx context.Context, results Results, db *assembling.Database) (int, error) {
	w := outputs.NewWriter(s.fs, s.cfg.OutputDir, s.cfg.Basename)

	if _, err := w.WriteDiagrams(ctx, results.Generators, results.HVDC); err != nil {
		return 0, err
	}

	sets, err := outputs.NewHVDCParams(s.cfg.StartingPointMode, w.DiagramDir(), db).Sets(results.HVDC)
	if err != nil {
		return 0, fmt.Errorf("hvdc parameters: %w", err)
	}
	if err := w.WritePar(ctx, sets); err != nil {
		return 0, err
	}
	if err := w.WriteManifest(ctx); err != nil {
		return 0, err
	}
	return len(w.Manifest().Entries()), nil
}

func (s *System) recordMetrics(results Results) {
	s.metrics.NodesTotal.Set(float64(results.Summary.Nodes))
	s.metrics.MainComponentNodesTotal.Set(float64(results.Summary.MainComponentNodes))
	s.metrics.RecordHVDC(results.HVDC)
	s.metrics.RecordGenerators(results.Generators)
	s.metrics.RecordSVarCs(results.SVarCs)
	s.metrics.RecordLoads(results.Loads)
}

// publish sends lines sorted by id, then generators in visitation order, then the summary.
func (s *System) publish(results Results) {
	ids := make([]string, 0, len(results.HVDC.Lines))
	for id := range results.HVDC.Lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		def := results.HVDC.Lines[id]
		s.publisher.Publish(msg.HVDC, msg.Record{ID: id, Model: def.Model.String(), Data: def})
	}
	for _, g := range results.Generators {
		s.publisher.Publish(msg.Generator, msg.Record{ID: g.ID, Model: g.Model.String(), Data: g})
	}
	s.publisher.Publish(msg.Summary, msg.Record{ID: "summary", Data: results.Summary})
}
