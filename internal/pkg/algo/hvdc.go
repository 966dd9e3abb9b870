/*
hvdc.go Classification of HVDC lines. Each node of the main connected component is visited once;
every converter found on the node contributes its end of the line. Definitions are partial while
the traversal runs and are frozen by Definitions once every node has been visited.
*/

package algo

import (
	"fmt"

	"github.com/ohowland/dfl_launcher/internal/pkg/assembling"
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// HVDCOptions configures an HVDCAlgorithm.
type HVDCOptions struct {
	InfiniteReactiveLimits bool
	Regulation             network.BusRegulationMap
	Switches               network.SwitchConnector
	VSCConverters          []*network.Converter
	// Rpcl2Lines maps the lines of a secondary voltage control area to the
	// converter side wired to side 1 of their model.
	Rpcl2Lines map[string]assembling.ConverterSide
	// Rpcl2Buses holds buses of a secondary voltage control area. A VSC line
	// with a converter on one of them uses the RPCL2 variants.
	Rpcl2Buses map[string]bool
}

type partialDefinition struct {
	def     HVDCDefinition
	visited [2]bool
	vls     [2]string
}

// HVDCAlgorithm accumulates HVDC line definitions during the node traversal.
type HVDCAlgorithm struct {
	infiniteReactiveLimits bool
	regulation             network.BusRegulationMap
	resolver               network.Resolver
	vscByBus               map[string][]*network.Converter
	rpcl2Lines             map[string]assembling.ConverterSide
	rpcl2Buses             map[string]bool

	partials map[string]*partialDefinition
	vscBuses map[string]VSCDefinition
}

// NewHVDCAlgorithm returns an algorithm with no line recorded.
func NewHVDCAlgorithm(opts HVDCOptions) *HVDCAlgorithm {
	a := &HVDCAlgorithm{
		infiniteReactiveLimits: opts.InfiniteReactiveLimits,
		regulation:             opts.Regulation,
		resolver:               network.NewResolver(opts.Switches),
		vscByBus:               make(map[string][]*network.Converter),
		rpcl2Lines:             opts.Rpcl2Lines,
		rpcl2Buses:             opts.Rpcl2Buses,
		partials:               make(map[string]*partialDefinition),
		vscBuses:               make(map[string]VSCDefinition),
	}
	if a.regulation == nil {
		a.regulation = make(network.BusRegulationMap)
	}
	// only regulating stations count towards a shared regulated point
	for _, c := range opts.VSCConverters {
		if !c.VoltageRegulationOn {
			continue
		}
		a.vscByBus[c.BusID] = append(a.vscByBus[c.BusID], c)
	}
	return a
}

// Apply visits every converter attached to node.
func (a *HVDCAlgorithm) Apply(node *network.Node) error {
	for _, c := range node.Converters {
		if err := a.visit(node, c); err != nil {
			return fmt.Errorf("hvdc algorithm on node %s: %w", node.ID, err)
		}
	}
	return nil
}

// Definitions freezes the accumulated definitions. The algorithm can keep
// running afterwards; returned values never alias its internal state.
func (a *HVDCAlgorithm) Definitions() (HVDCLineDefinitions, error) {
	out := HVDCLineDefinitions{
		Lines:                make(map[string]HVDCDefinition, len(a.partials)),
		VSCBusVSCDefinitions: make(map[string]VSCDefinition, len(a.vscBuses)),
	}
	for id, p := range a.partials {
		if p.def.Model == HvdcModelUnset || p.def.Position == PositionUnset {
			return HVDCLineDefinitions{}, fmt.Errorf("line %s: %w", id, ErrUnfinishedDefinition)
		}
		out.Lines[id] = p.def.clone()
	}
	for bus, def := range a.vscBuses {
		out.VSCBusVSCDefinitions[bus] = def.clone()
	}
	return out, nil
}

func (a *HVDCAlgorithm) visit(node *network.Node, c *network.Converter) error {
	line := c.Line
	if line == nil {
		return fmt.Errorf("converter %s: %w", c.ID, ErrUnknownConverterEnd)
	}
	if c.Type != line.ConverterType {
		return fmt.Errorf("converter %s is %s on %s line %s: %w", c.ID, c.Type, line.ConverterType, line.ID, ErrConverterTypeMismatch)
	}

	end, err := converterEnd(line, c)
	if err != nil {
		return err
	}
	if c.BusID == "" {
		return fmt.Errorf("converter %s: %w", c.ID, ErrMissingBus)
	}

	p, ok := a.partials[line.ID]
	if !ok {
		p, err = a.newPartial(line)
		if err != nil {
			return err
		}
		a.partials[line.ID] = p
	}
	if p.visited[end] {
		return fmt.Errorf("line %s converter %s: %w", line.ID, c.ID, ErrConverterVisitedTwice)
	}
	p.visited[end] = true
	p.vls[end] = node.VoltageLevelID()
	p.def.Position = positionOf(p.visited)

	result, err := a.computeModel(p)
	if err != nil {
		return err
	}
	p.def.Model = result.model
	if p.def.ConverterType == network.VSC {
		if side, ok := a.rpcl2Side(&p.def); ok {
			p.def.ConverterStationSide1 = side != assembling.Side2
		}
	}
	// the first station recorded on a bus wins
	for _, b := range result.buses {
		if _, ok := a.vscBuses[b.bus]; !ok {
			a.vscBuses[b.bus] = b.vsc.clone()
		}
	}
	return nil
}

func converterEnd(line *network.HvdcLine, c *network.Converter) (int, error) {
	switch {
	case c == line.Converter1:
		return 0, nil
	case c == line.Converter2:
		return 1, nil
	case c.ID == line.Converter1.ID:
		return 0, nil
	case c.ID == line.Converter2.ID:
		return 1, nil
	}
	return 0, fmt.Errorf("converter %s on line %s: %w", c.ID, line.ID, ErrUnknownConverterEnd)
}

func positionOf(visited [2]bool) Position {
	switch {
	case visited[0] && visited[1]:
		return BothInMainComponent
	case visited[1]:
		return SecondInMainComponent
	case visited[0]:
		return FirstInMainComponent
	}
	return PositionUnset
}

func (a *HVDCAlgorithm) newPartial(line *network.HvdcLine) (*partialDefinition, error) {
	if !isFinite(line.PMax) {
		return nil, fmt.Errorf("line %s pMax: %w", line.ID, ErrNonFinite)
	}

	c1, c2 := line.Converter1, line.Converter2
	def := HVDCDefinition{
		ID:                    line.ID,
		ConverterType:         line.ConverterType,
		Converter1ID:          c1.ID,
		Converter1BusID:       c1.BusID,
		Converter2ID:          c2.ID,
		Converter2BusID:       c2.BusID,
		PMax:                  line.PMax,
		IsConverter1Rectifier: line.IsConverter1Rectifier,
		VdcNom:                line.VdcNom,
		PSetPoint:             line.PSetPoint,
		Rdc:                   line.Rdc,
		LossFactors:           line.LossFactors,
		ConverterStationSide1: true,
	}

	switch line.ConverterType {
	case network.LCC:
		def.PowerFactors = [2]float64{c1.PowerFactor, c2.PowerFactor}
	case network.VSC:
		for i, c := range []*network.Converter{c1, c2} {
			if !isFinite(c.QMax, c.QMin) {
				return nil, fmt.Errorf("converter %s reactive limits: %w", c.ID, ErrNonFinite)
			}
			vreg := c.VoltageRegulationOn
			vsc := NewVSCDefinition(c.ID, c.QMax, c.QMin, c.Q, line.PMax, c.Points)
			if i == 0 {
				def.Converter1VoltageRegulationOn = &vreg
				def.VSCDefinition1 = &vsc
			} else {
				def.Converter2VoltageRegulationOn = &vreg
				def.VSCDefinition2 = &vsc
			}
		}
	}

	if apc := line.ActivePowerControl; apc != nil {
		if apc.Droop != nil {
			droop := *apc.Droop
			def.Droop = &droop
		}
		if apc.P0 != nil {
			p0 := *apc.P0
			def.P0 = &p0
		}
	}

	return &partialDefinition{def: def}, nil
}

// hvdcModelDefinition is the outcome of one model computation: the model and
// the multiply regulated buses with the station found on them.
type hvdcModelDefinition struct {
	model HVDCModel
	buses []busVSC
}

type busVSC struct {
	bus string
	vsc VSCDefinition
}

// computeModel selects the model of the line from its current position.
func (a *HVDCAlgorithm) computeModel(p *partialDefinition) (hvdcModelDefinition, error) {
	def := &p.def
	out := hvdcModelDefinition{}
	axes := modelAxes{
		dangling: def.Position != BothInMainComponent,
		diagram:  !a.infiniteReactiveLimits,
	}

	if def.ConverterType == network.LCC {
		axes.family = familyPTanPhi
	} else {
		axes.emulation = !axes.dangling && def.Droop != nil && !doubleIsZero(*def.Droop)
		if axes.emulation && (def.P0 == nil || !isFinite(*def.Droop, *def.P0)) {
			return out, fmt.Errorf("line %s: %w", def.ID, ErrMissingEmulationData)
		}

		axes.family = familyPV
		if side, ok := a.rpcl2Side(def); ok {
			axes.rpcl2 = rpcl2Side1
			if side == assembling.Side2 {
				axes.rpcl2 = rpcl2Side2
			}
		} else {
			multiple, err := a.multipleRegulated(p)
			if err != nil {
				return out, fmt.Errorf("line %s: %w", def.ID, err)
			}
			if multiple {
				axes.family = familyPQProp
				out.buses = visitedVSCs(p)
			}
		}
	}

	model, err := lookupModel(axes)
	if err != nil {
		return out, fmt.Errorf("line %s: %w", def.ID, err)
	}
	out.model = model
	return out, nil
}

// rpcl2Side looks the line up in the secondary voltage control area, by line
// id first and then by converter bus.
func (a *HVDCAlgorithm) rpcl2Side(def *HVDCDefinition) (assembling.ConverterSide, bool) {
	if side, ok := a.rpcl2Lines[def.ID]; ok {
		return side, true
	}
	if a.rpcl2Buses[def.Converter1BusID] {
		return assembling.Side1, true
	}
	if a.rpcl2Buses[def.Converter2BusID] {
		return assembling.Side2, true
	}
	return 0, false
}

// visitedEnds lists the ends of the line lying in the main component.
func visitedEnds(p *partialDefinition) []int {
	ends := make([]int, 0, 2)
	for i, v := range p.visited {
		if v {
			ends = append(ends, i)
		}
	}
	return ends
}

func endBus(def *HVDCDefinition, end int) string {
	if end == 0 {
		return def.Converter1BusID
	}
	return def.Converter2BusID
}

func endConverterID(def *HVDCDefinition, end int) string {
	if end == 0 {
		return def.Converter1ID
	}
	return def.Converter2ID
}

// multipleRegulated reports whether the bus of a visited end is regulated by
// several devices, either from the regulation map or because another VSC
// station sits on a bus merged with it through closed switches.
func (a *HVDCAlgorithm) multipleRegulated(p *partialDefinition) (bool, error) {
	for _, end := range visitedEnds(p) {
		bus := endBus(&p.def, end)
		if a.regulation.Get(bus) == network.Multiple {
			return true, nil
		}
		shared, err := a.sharedThroughSwitch(bus, p.vls[end], endConverterID(&p.def, end))
		if err != nil {
			return false, err
		}
		if shared {
			return true, nil
		}
	}
	return false, nil
}

func (a *HVDCAlgorithm) sharedThroughSwitch(busID, vlID, converterID string) (bool, error) {
	buses, err := a.resolver.ConnectedBySwitch(busID, vlID)
	if err != nil {
		return false, err
	}
	for _, bus := range buses {
		for _, c := range a.vscByBus[bus] {
			if c.ID != converterID {
				return true, nil
			}
		}
	}
	return false, nil
}

func visitedVSCs(p *partialDefinition) []busVSC {
	out := make([]busVSC, 0, 2)
	for _, end := range visitedEnds(p) {
		vsc := p.def.VSCDefinition1
		if end == 1 {
			vsc = p.def.VSCDefinition2
		}
		if vsc != nil {
			out = append(out, busVSC{bus: endBus(&p.def, end), vsc: *vsc})
		}
	}
	return out
}
