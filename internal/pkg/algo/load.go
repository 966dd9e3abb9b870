package algo

import (
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// LoadModel is the dynamic model selected for a load.
type LoadModel int

const (
	LoadNetwork LoadModel = iota
	LoadRestorativeWithLimits
)

func (m LoadModel) String() string {
	if m == LoadRestorativeWithLimits {
		return "LOADRESTORATIVEWITHLIMITS"
	}
	return "NETWORK"
}

// MarshalText writes the model name.
func (m LoadModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

type LoadDefinition struct {
	ID     string    `json:"id"`
	Model  LoadModel `json:"model"`
	NodeID string    `json:"nodeId"`
}

// LoadAlgorithm keeps the loads of nodes at or above the DSO voltage level.
type LoadAlgorithm struct {
	dsoVoltageLevel float64
	loads           []LoadDefinition
}

func NewLoadAlgorithm(dsoVoltageLevel float64) *LoadAlgorithm {
	return &LoadAlgorithm{dsoVoltageLevel: dsoVoltageLevel, loads: make([]LoadDefinition, 0)}
}

func (a *LoadAlgorithm) Loads() []LoadDefinition {
	out := make([]LoadDefinition, len(a.loads))
	copy(out, a.loads)
	return out
}

func (a *LoadAlgorithm) Apply(node *network.Node) error {
	if !doubleEquals(node.NominalVoltage, a.dsoVoltageLevel) && node.NominalVoltage < a.dsoVoltageLevel {
		return nil
	}
	for _, l := range node.Loads {
		model := LoadRestorativeWithLimits
		if l.Fictitious || l.NotInjecting {
			model = LoadNetwork
		}
		a.loads = append(a.loads, LoadDefinition{ID: l.ID, Model: model, NodeID: node.ID})
	}
	return nil
}
