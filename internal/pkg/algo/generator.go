package algo

import (
	"fmt"
	"log"

	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// GeneratorModel is the dynamic model selected for a generator.
type GeneratorModel int

const (
	SignalNInfinite GeneratorModel = iota
	SignalNRectangular
	DiagramPQSignalN
	SignalNRpclInfinite
	SignalNRpclRectangular
	DiagramPQRpclSignalN
	SignalNRpcl2Infinite
	SignalNRpcl2Rectangular
	DiagramPQRpcl2SignalN
	SignalNTfoInfinite
	SignalNTfoRectangular
	DiagramPQTfoSignalN
	SignalNTfoRpclInfinite
	SignalNTfoRpclRectangular
	DiagramPQTfoRpclSignalN
	SignalNTfoRpcl2Infinite
	SignalNTfoRpcl2Rectangular
	DiagramPQTfoRpcl2SignalN
	RemoteSignalNInfinite
	RemoteSignalNRectangular
	RemoteDiagramPQSignalN
	PropSignalNInfinite
	PropSignalNRectangular
	PropDiagramPQSignalN
	GeneratorNetwork
)

var generatorModelNames = [...]string{
	"SIGNALN_INFINITE",
	"SIGNALN_RECTANGULAR",
	"DIAGRAM_PQ_SIGNALN",
	"SIGNALN_RPCL_INFINITE",
	"SIGNALN_RPCL_RECTANGULAR",
	"DIAGRAM_PQ_RPCL_SIGNALN",
	"SIGNALN_RPCL2_INFINITE",
	"SIGNALN_RPCL2_RECTANGULAR",
	"DIAGRAM_PQ_RPCL2_SIGNALN",
	"SIGNALN_TFO_INFINITE",
	"SIGNALN_TFO_RECTANGULAR",
	"DIAGRAM_PQ_TFO_SIGNALN",
	"SIGNALN_TFO_RPCL_INFINITE",
	"SIGNALN_TFO_RPCL_RECTANGULAR",
	"DIAGRAM_PQ_TFO_RPCL_SIGNALN",
	"SIGNALN_TFO_RPCL2_INFINITE",
	"SIGNALN_TFO_RPCL2_RECTANGULAR",
	"DIAGRAM_PQ_TFO_RPCL2_SIGNALN",
	"REMOTE_SIGNALN_INFINITE",
	"REMOTE_SIGNALN_RECTANGULAR",
	"REMOTE_DIAGRAM_PQ_SIGNALN",
	"PROP_SIGNALN_INFINITE",
	"PROP_SIGNALN_RECTANGULAR",
	"PROP_DIAGRAM_PQ_SIGNALN",
	"NETWORK",
}

func (m GeneratorModel) String() string {
	if m < 0 || int(m) >= len(generatorModelNames) {
		return fmt.Sprintf("GeneratorModel(%d)", int(m))
	}
	return generatorModelNames[m]
}

// MarshalText writes the model name.
func (m GeneratorModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// diagram shape of a generator model
type diagramKind int

const (
	infiniteDiagram diagramKind = iota
	rectangularDiagram
	pqDiagram
)

// signalN models indexed by [svc][diagram], svc being none, rpcl or rpcl2.
var (
	signalNModels = [3][3]GeneratorModel{
		{SignalNInfinite, SignalNRectangular, DiagramPQSignalN},
		{SignalNRpclInfinite, SignalNRpclRectangular, DiagramPQRpclSignalN},
		{SignalNRpcl2Infinite, SignalNRpcl2Rectangular, DiagramPQRpcl2SignalN},
	}
	tfoModels = [3][3]GeneratorModel{
		{SignalNTfoInfinite, SignalNTfoRectangular, DiagramPQTfoSignalN},
		{SignalNTfoRpclInfinite, SignalNTfoRpclRectangular, DiagramPQTfoRpclSignalN},
		{SignalNTfoRpcl2Infinite, SignalNTfoRpcl2Rectangular, DiagramPQTfoRpcl2SignalN},
	}
	remoteModels = [3]GeneratorModel{RemoteSignalNInfinite, RemoteSignalNRectangular, RemoteDiagramPQSignalN}
	propModels   = [3]GeneratorModel{PropSignalNInfinite, PropSignalNRectangular, PropDiagramPQSignalN}
)

// IsUsingDiagram reports whether the model uses a finite diagram.
func (m GeneratorModel) IsUsingDiagram() bool {
	switch m {
	case SignalNInfinite, RemoteSignalNInfinite, PropSignalNInfinite, SignalNTfoInfinite, SignalNRpclInfinite,
		SignalNTfoRpclInfinite, SignalNRpcl2Infinite, SignalNTfoRpcl2Infinite, GeneratorNetwork:
		return false
	}
	return true
}

// IsUsingRectangularDiagram reports whether the model uses a rectangular diagram.
func (m GeneratorModel) IsUsingRectangularDiagram() bool {
	switch m {
	case SignalNRectangular, SignalNTfoRectangular, RemoteSignalNRectangular, PropSignalNRectangular,
		SignalNTfoRpclRectangular, SignalNRpclRectangular, SignalNTfoRpcl2Rectangular, SignalNRpcl2Rectangular:
		return true
	}
	return false
}

// HasTransformer reports whether the model carries the step-up transformer.
func (m GeneratorModel) HasTransformer() bool {
	for _, row := range tfoModels {
		for _, tfo := range row {
			if m == tfo {
				return true
			}
		}
	}
	return false
}

// HasRpcl reports whether the model carries a reactive power control loop (RPCL or RPCL2).
func (m GeneratorModel) HasRpcl() bool {
	for svc := 1; svc < 3; svc++ {
		for d := 0; d < 3; d++ {
			if m == signalNModels[svc][d] || m == tfoModels[svc][d] {
				return true
			}
		}
	}
	return false
}

// HasRpcl2 reports whether the model carries the RPCL2 loop.
func (m GeneratorModel) HasRpcl2() bool {
	for d := 0; d < 3; d++ {
		if m == signalNModels[2][d] || m == tfoModels[2][d] {
			return true
		}
	}
	return false
}

// IsNetwork reports whether the generator keeps the network model.
func (m GeneratorModel) IsNetwork() bool {
	return m == GeneratorNetwork
}

// IsRegulatingRemotely reports whether the generator regulates a remote bus.
func (m GeneratorModel) IsRegulatingRemotely() bool {
	return m == RemoteSignalNInfinite || m == RemoteSignalNRectangular || m == RemoteDiagramPQSignalN
}

// GeneratorDefinition is the launcher view of one generator.
type GeneratorDefinition struct {
	ID                    string                       `json:"id"`
	Model                 GeneratorModel               `json:"model"`
	NodeID                string                       `json:"nodeId"`
	Points                []network.ReactiveCurvePoint `json:"points"`
	QMin                  float64                      `json:"qmin"`
	QMax                  float64                      `json:"qmax"`
	PMin                  float64                      `json:"pmin"`
	PMax                  float64                      `json:"pmax"`
	Q                     float64                      `json:"q"`
	TargetP               float64                      `json:"targetP"`
	RegulatedBusID        string                       `json:"regulatedBusId"`
	IsNuclear             bool                         `json:"isNuclear"`
	HasActivePowerControl bool                         `json:"hasActivePowerControl"`
}

// GeneratorOptions configures a GeneratorAlgorithm.
type GeneratorOptions struct {
	InfiniteReactiveLimits bool
	// TfoVoltageLevel is the voltage above which the step-up transformer is
	// assumed to be missing from the static description.
	TfoVoltageLevel float64
	Regulation      network.BusRegulationMap
	Switches        network.SwitchConnector
	// GeneratorsInSVC maps each generator of a secondary voltage control area
	// to whether it uses RPCL2.
	GeneratorsInSVC map[string]bool
}

// GeneratorAlgorithm selects the model of every generator.
type GeneratorAlgorithm struct {
	opts     GeneratorOptions
	resolver network.Resolver

	generators              []GeneratorDefinition
	busesRegulatedBySeveral map[string]string
	atLeastOneRegulating    bool
}

// NewGeneratorAlgorithm returns an algorithm with no generator recorded.
func NewGeneratorAlgorithm(opts GeneratorOptions) *GeneratorAlgorithm {
	if opts.Regulation == nil {
		opts.Regulation = make(network.BusRegulationMap)
	}
	return &GeneratorAlgorithm{
		opts:                    opts,
		resolver:                network.NewResolver(opts.Switches),
		generators:              make([]GeneratorDefinition, 0),
		busesRegulatedBySeveral: make(map[string]string),
	}
}

// Generators returns the definitions in visitation order.
func (a *GeneratorAlgorithm) Generators() []GeneratorDefinition {
	out := make([]GeneratorDefinition, len(a.generators))
	copy(out, a.generators)
	return out
}

// BusesRegulatedBySeveral maps each bus regulated by several generators to
// the first generator found regulating it.
func (a *GeneratorAlgorithm) BusesRegulatedBySeveral() map[string]string {
	out := make(map[string]string, len(a.busesRegulatedBySeveral))
	for k, v := range a.busesRegulatedBySeveral {
		out[k] = v
	}
	return out
}

// AtLeastOneRegulating reports whether a generator with a dynamic model regulates voltage.
func (a *GeneratorAlgorithm) AtLeastOneRegulating() bool {
	return a.atLeastOneRegulating
}

// Apply selects the model of every generator of node.
func (a *GeneratorAlgorithm) Apply(node *network.Node) error {
	for _, g := range node.Generators {
		model, err := a.selectModel(node, g)
		if err != nil {
			return fmt.Errorf("generator %s: %w", g.ID, err)
		}
		points := make([]network.ReactiveCurvePoint, len(g.Points))
		copy(points, g.Points)
		a.generators = append(a.generators, GeneratorDefinition{
			ID:                    g.ID,
			Model:                 model,
			NodeID:                node.ID,
			Points:                points,
			QMin:                  g.QMin,
			QMax:                  g.QMax,
			PMin:                  g.PMin,
			PMax:                  g.PMax,
			Q:                     g.Q,
			TargetP:               g.TargetP,
			RegulatedBusID:        g.RegulatedBusID,
			IsNuclear:             g.Nuclear,
			HasActivePowerControl: g.HasActivePowerControl,
		})
	}
	return nil
}

func (a *GeneratorAlgorithm) selectModel(node *network.Node, g network.Generator) (GeneratorModel, error) {
	if !isTargetPValid(g) || !g.VoltageRegulationOn || !a.isDiagramValid(g) {
		return GeneratorNetwork, nil
	}
	a.atLeastOneRegulating = true

	svc := 0
	if rpcl2, ok := a.opts.GeneratorsInSVC[g.ID]; ok {
		svc = 1
		if rpcl2 {
			svc = 2
		}
	}
	diagram := a.diagramKind(g)

	if g.RegulatedBusID == g.ConnectedBusID && (g.VNom > a.opts.TfoVoltageLevel || doubleEquals(g.VNom, a.opts.TfoVoltageLevel)) {
		return tfoModels[svc][diagram], nil
	}

	if len(node.Generators) == 1 {
		shared, err := a.isOtherGeneratorConnectedBySwitches(node)
		if err != nil {
			return GeneratorNetwork, err
		}
		if shared {
			a.regulatedBySeveral(g)
			return propModels[diagram], nil
		}
	}

	switch a.opts.Regulation.Get(g.RegulatedBusID) {
	case network.One:
		if g.RegulatedBusID == g.ConnectedBusID {
			return signalNModels[svc][diagram], nil
		}
		return remoteModels[diagram], nil
	case network.Multiple:
		a.regulatedBySeveral(g)
		return propModels[diagram], nil
	}
	log.Printf("[Generator] %s regulates bus %s which is not in the regulation map", g.ID, g.RegulatedBusID)
	return SignalNInfinite, nil
}

func (a *GeneratorAlgorithm) regulatedBySeveral(g network.Generator) {
	if _, ok := a.busesRegulatedBySeveral[g.RegulatedBusID]; !ok {
		a.busesRegulatedBySeveral[g.RegulatedBusID] = g.ID
	}
}

func (a *GeneratorAlgorithm) diagramKind(g network.Generator) diagramKind {
	switch {
	case a.opts.InfiniteReactiveLimits:
		return infiniteDiagram
	case isDiagramRectangular(g):
		return rectangularDiagram
	}
	return pqDiagram
}

func (a *GeneratorAlgorithm) isOtherGeneratorConnectedBySwitches(node *network.Node) (bool, error) {
	buses, err := a.resolver.ConnectedBySwitch(node.ID, node.VoltageLevelID())
	if err != nil || len(buses) == 0 || node.VoltageLevel == nil {
		return false, err
	}
	for _, id := range buses {
		for _, other := range node.VoltageLevel.Nodes {
			if other.ID == id && len(other.Generators) > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// isTargetPValid checks that -targetP lies within [pmin, pmax].
func isTargetPValid(g network.Generator) bool {
	p := -g.TargetP
	return (doubleEquals(p, g.PMin) || p > g.PMin) && (doubleEquals(p, g.PMax) || p < g.PMax)
}

func (a *GeneratorAlgorithm) isDiagramValid(g network.Generator) bool {
	if a.opts.InfiniteReactiveLimits {
		return true
	}
	if len(g.Points) == 0 {
		if doubleEquals(g.PMin, g.PMax) {
			log.Printf("[Generator] %s: invalid diagram, all P are equal", g.ID)
			return false
		}
		if doubleEquals(g.QMin, g.QMax) {
			log.Printf("[Generator] %s: invalid diagram, qmin equals qmax", g.ID)
			return false
		}
		return true
	}
	if len(g.Points) == 1 {
		log.Printf("[Generator] %s: invalid diagram, only one point", g.ID)
		return false
	}

	allPEqual, allQminEqualQmax := true, true
	for _, pt := range g.Points {
		allPEqual = allPEqual && doubleEquals(pt.P, g.Points[0].P)
		allQminEqualQmax = allQminEqualQmax && doubleEquals(pt.QMin, pt.QMax)
	}
	if allPEqual || allQminEqualQmax {
		log.Printf("[Generator] %s: invalid diagram (all P equal: %t, qmin equals qmax: %t)", g.ID, allPEqual, allQminEqualQmax)
		return false
	}
	return true
}

// isDiagramRectangular reports whether every point has the same reactive limits.
func isDiagramRectangular(g network.Generator) bool {
	for i := 1; i < len(g.Points); i++ {
		prev, cur := g.Points[i-1], g.Points[i]
		if !doubleEquals(prev.QMin, cur.QMin) || !doubleEquals(prev.QMax, cur.QMax) {
			return false
		}
	}
	return true
}
