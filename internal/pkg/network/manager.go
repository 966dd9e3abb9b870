/*
manager.go Builds the bus graph, the switch topology and the regulation map from a network
document.
*/

package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ohowland/dfl_launcher/internal/pkg/validation"
	"github.com/viant/afs"
)

// Manager owns the network built from a Document.
type Manager struct {
	graph         *Graph
	voltageLevels []*VoltageLevel
	lines         []*Line
	tfos          []*Tfo
	hvdcLines     []*HvdcLine
	switches      *SwitchMap
	regulation    BusRegulationMap
}

// LoadDocument downloads and decodes the network document at URL.
func LoadDocument(ctx context.Context, fs afs.Service, URL string) (*Manager, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("network %s: %w", URL, err)
	}
	return New(doc)
}

// New validates doc and builds the network.
func New(doc Document) (*Manager, error) {
	if err := validation.Struct(&doc); err != nil {
		return nil, err
	}

	m := &Manager{
		graph:      NewGraph(),
		switches:   NewSwitchMap(),
		regulation: make(BusRegulationMap),
	}

	if err := m.buildNodes(doc); err != nil {
		return nil, err
	}
	if err := m.buildBranches(doc); err != nil {
		return nil, err
	}
	if err := m.buildHvdcLines(doc); err != nil {
		return nil, err
	}
	m.graph.linkNeighbours()

	if err := m.buildRegulationMap(); err != nil {
		return nil, err
	}

	log.Printf("[Network] %d buses, %d lines, %d transformers, %d hvdc lines",
		len(m.graph.order), len(m.lines), len(m.tfos), len(m.hvdcLines))
	return m, nil
}

func (m *Manager) buildNodes(doc Document) error {
	for _, vlDoc := range doc.VoltageLevels {
		vl := NewVoltageLevel(vlDoc.ID)
		m.voltageLevels = append(m.voltageLevels, vl)

		for _, b := range vlDoc.Buses {
			n := NewNode(b.ID, vl, b.NominalVoltage, b.Shunts, b.Fictitious)
			n.Loads = b.Loads
			n.Generators = b.Generators
			n.SVarCs = b.SVarCs
			if err := m.graph.AddNode(n); err != nil {
				return err
			}
		}

		for _, sw := range vlDoc.Switches {
			if sw.Open {
				continue
			}
			if err := m.graph.AddEdge(sw.Bus1, sw.Bus2); err != nil {
				return fmt.Errorf("switch %s: %w", sw.ID, err)
			}
			m.switches.Add(sw.Bus1, vl.ID, sw.Bus2)
		}
	}
	return nil
}

func (m *Manager) buildBranches(doc Document) error {
	for _, l := range doc.Lines {
		n1, ok1 := m.graph.Node(l.Bus1)
		n2, ok2 := m.graph.Node(l.Bus2)
		if !ok1 || !ok2 {
			return fmt.Errorf("line %s: unknown bus %s or %s", l.ID, l.Bus1, l.Bus2)
		}
		m.lines = append(m.lines, &Line{ID: l.ID, Nodes: [2]*Node{n1, n2}})
		if l.Open1 || l.Open2 {
			continue
		}
		if err := m.graph.AddEdge(l.Bus1, l.Bus2); err != nil {
			return err
		}
	}

	for _, t := range doc.Transformers {
		tfo := &Tfo{ID: t.ID}
		connected := make([]string, 0, len(t.Buses))
		for i, busID := range t.Buses {
			n, ok := m.graph.Node(busID)
			if !ok {
				return fmt.Errorf("transformer %s: unknown bus %s", t.ID, busID)
			}
			tfo.Nodes = append(tfo.Nodes, n)
			if i < len(t.Open) && t.Open[i] {
				continue
			}
			connected = append(connected, busID)
		}
		m.tfos = append(m.tfos, tfo)
		for i := 0; i < len(connected); i++ {
			for j := i + 1; j < len(connected); j++ {
				if err := m.graph.AddEdge(connected[i], connected[j]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (m *Manager) buildHvdcLines(doc Document) error {
	for _, h := range doc.HvdcLines {
		t, err := ParseConverterType(h.ConverterType)
		if err != nil {
			return err
		}
		c1 := h.Converter1.build(t)
		c2 := h.Converter2.build(t)
		line, err := NewHvdcLine(h.ID, t, c1, c2, h.ActivePowerControl, h.PMax, h.IsConverter1Rectifier,
			h.VdcNom, h.PSetPoint, h.Rdc, h.LossFactors)
		if err != nil {
			return err
		}
		for _, c := range []*Converter{c1, c2} {
			n, ok := m.graph.Node(c.BusID)
			if !ok {
				return fmt.Errorf("hvdc line %s: converter %s on unknown bus %s", h.ID, c.ID, c.BusID)
			}
			n.Converters = append(n.Converters, c)
		}
		m.hvdcLines = append(m.hvdcLines, line)
	}
	return nil
}

// buildRegulationMap counts, per bus, the generators and VSC stations
// regulating its voltage. A regulator counts on its bus and on every bus
// merged with it through closed switches.
func (m *Manager) buildRegulationMap() error {
	resolver := NewResolver(m.switches)
	mark := func(busID string) error {
		n, ok := m.graph.Node(busID)
		if !ok {
			return errors.New(fmt.Sprintf("regulated bus %s does not exist in graph.", busID))
		}
		buses, err := resolver.ConnectedBySwitch(n.ID, n.VoltageLevelID())
		if err != nil {
			return err
		}
		m.regulation.mark(append(buses, n.ID)...)
		return nil
	}

	for _, n := range m.graph.Nodes() {
		for _, g := range n.Generators {
			if !g.VoltageRegulationOn {
				continue
			}
			regulated := g.RegulatedBusID
			if regulated == "" {
				regulated = n.ID
			}
			if err := mark(regulated); err != nil {
				return fmt.Errorf("generator %s: %w", g.ID, err)
			}
		}
	}

	for _, line := range m.hvdcLines {
		if line.ConverterType != VSC {
			continue
		}
		for _, c := range []*Converter{line.Converter1, line.Converter2} {
			if !c.VoltageRegulationOn {
				continue
			}
			if err := mark(c.BusID); err != nil {
				return fmt.Errorf("converter %s: %w", c.ID, err)
			}
		}
	}
	return nil
}

// Nodes returns every bus in document order.
func (m *Manager) Nodes() []*Node {
	return m.graph.Nodes()
}

// Node returns the bus with the given id.
func (m *Manager) Node(id string) (*Node, bool) {
	return m.graph.Node(id)
}

// HvdcLines returns the HVDC lines in document order.
func (m *Manager) HvdcLines() []*HvdcLine {
	return m.hvdcLines
}

// VSCConverters returns every VSC station of the network.
func (m *Manager) VSCConverters() []*Converter {
	out := make([]*Converter, 0)
	for _, line := range m.hvdcLines {
		if line.ConverterType == VSC {
			out = append(out, line.Converter1, line.Converter2)
		}
	}
	return out
}

// BusRegulationMap returns the regulation count of every regulated bus.
func (m *Manager) BusRegulationMap() BusRegulationMap {
	return m.regulation
}

// SwitchConnector exposes the closed switch topology.
func (m *Manager) SwitchConnector() SwitchConnector {
	return m.switches
}
