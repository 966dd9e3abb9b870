/*
node.go Static description of the network elements attached to a single calculated bus.
*/

package network

// VoltageLevel groups the buses sharing one nominal voltage inside a substation.
type VoltageLevel struct {
	ID    string
	Nodes []*Node
}

// NewVoltageLevel returns an empty voltage level.
func NewVoltageLevel(id string) *VoltageLevel {
	return &VoltageLevel{ID: id, Nodes: make([]*Node, 0)}
}

// Node represents a single electrical bus of the network and everything connected to it.
type Node struct {
	ID             string
	VoltageLevel   *VoltageLevel
	NominalVoltage float64
	Fictitious     bool
	Shunts         []Shunt
	Neighbours     []*Node
	Loads          []Load
	Generators     []Generator
	Converters     []*Converter
	SVarCs         []StaticVarCompensator
}

// NewNode builds a node and registers it in its voltage level.
func NewNode(id string, vl *VoltageLevel, nominalVoltage float64, shunts []Shunt, fictitious bool) *Node {
	n := &Node{
		ID:             id,
		VoltageLevel:   vl,
		NominalVoltage: nominalVoltage,
		Fictitious:     fictitious,
		Shunts:         shunts,
		Neighbours:     make([]*Node, 0),
	}
	if vl != nil {
		vl.Nodes = append(vl.Nodes, n)
	}
	return n
}

// VoltageLevelID returns the id of the node's voltage level, or an empty string.
func (n *Node) VoltageLevelID() string {
	if n.VoltageLevel == nil {
		return ""
	}
	return n.VoltageLevel.ID
}

// Shunt is a shunt compensator connectable to a node.
type Shunt struct {
	ID string `json:"ID"`
}

// Load is a consumer attached to a node.
type Load struct {
	ID           string `json:"ID"`
	Fictitious   bool   `json:"Fictitious"`
	NotInjecting bool   `json:"NotInjecting"`
}

// ReactiveCurvePoint is one point of a reactive capability curve.
type ReactiveCurvePoint struct {
	P    float64 `json:"P"`
	QMin float64 `json:"QMin"`
	QMax float64 `json:"QMax"`
}

// Generator is a synchronous machine attached to a node.
type Generator struct {
	ID                    string               `json:"ID"`
	VoltageRegulationOn   bool                 `json:"VoltageRegulationOn"`
	Points                []ReactiveCurvePoint `json:"Points"`
	QMin                  float64              `json:"QMin"`
	QMax                  float64              `json:"QMax"`
	PMin                  float64              `json:"PMin"`
	PMax                  float64              `json:"PMax"`
	Q                     float64              `json:"Q"`
	TargetP               float64              `json:"TargetP"`
	VNom                  float64              `json:"VNom"`
	RegulatedBusID        string               `json:"RegulatedBusID"`
	ConnectedBusID        string               `json:"ConnectedBusID"`
	Nuclear               bool                 `json:"Nuclear"`
	HasActivePowerControl bool                 `json:"HasActivePowerControl"`
}

// StaticVarCompensator is a SVarC attached to a node.
type StaticVarCompensator struct {
	ID                                string  `json:"ID"`
	RegulatingVoltage                 bool    `json:"RegulatingVoltage"`
	BMin                              float64 `json:"BMin"`
	BMax                              float64 `json:"BMax"`
	VoltageSetPoint                   float64 `json:"VoltageSetPoint"`
	UNom                              float64 `json:"UNom"`
	UMinActivation                    float64 `json:"UMinActivation"`
	UMaxActivation                    float64 `json:"UMaxActivation"`
	USetPointMin                      float64 `json:"USetPointMin"`
	USetPointMax                      float64 `json:"USetPointMax"`
	B0                                float64 `json:"B0"`
	Slope                             float64 `json:"Slope"`
	HasStandByAutomaton               bool    `json:"HasStandByAutomaton"`
	HasVoltagePerReactivePowerControl bool    `json:"HasVoltagePerReactivePowerControl"`
	RegulatedBusID                    string  `json:"RegulatedBusID"`
	ConnectedBusID                    string  `json:"ConnectedBusID"`
	UNomRemote                        float64 `json:"UNomRemote"`
}

// Line is an AC branch between two nodes.
type Line struct {
	ID    string
	Nodes [2]*Node
}

// Tfo is a two or three winding transformer.
type Tfo struct {
	ID    string
	Nodes []*Node
}
