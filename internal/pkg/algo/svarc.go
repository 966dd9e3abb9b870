package algo

import (
	"fmt"

	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// SVarCModel is the dynamic model selected for a static var compensator.
type SVarCModel int

const (
	SVarCPV SVarCModel = iota
	SVarCPVModeHandling
	SVarCPVRemote
	SVarCPVRemoteModeHandling
	SVarCPVProp
	SVarCPVPropModeHandling
	SVarCPVPropRemote
	SVarCPVPropRemoteModeHandling
	SVarCNetwork
)

var svarcModelNames = [...]string{
	"SVARCPV",
	"SVARCPVMODEHANDLING",
	"SVARCPVREMOTE",
	"SVARCPVREMOTEMODEHANDLING",
	"SVARCPVPROP",
	"SVARCPVPROPMODEHANDLING",
	"SVARCPVPROPREMOTE",
	"SVARCPVPROPREMOTEMODEHANDLING",
	"NETWORK",
}

func (m SVarCModel) String() string {
	if m < 0 || int(m) >= len(svarcModelNames) {
		return fmt.Sprintf("SVarCModel(%d)", int(m))
	}
	return svarcModelNames[m]
}

// MarshalText writes the model name.
func (m SVarCModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// SVarCDefinition is the launcher view of one static var compensator.
type SVarCDefinition struct {
	ID              string     `json:"id"`
	Model           SVarCModel `json:"model"`
	BMin            float64    `json:"bMin"`
	BMax            float64    `json:"bMax"`
	VoltageSetPoint float64    `json:"voltageSetPoint"`
	UNom            float64    `json:"uNom"`
	UMinActivation  float64    `json:"uMinActivation"`
	UMaxActivation  float64    `json:"uMaxActivation"`
	USetPointMin    float64    `json:"uSetPointMin"`
	USetPointMax    float64    `json:"uSetPointMax"`
	B0              float64    `json:"b0"`
	Slope           float64    `json:"slope"`
	UNomRemote      float64    `json:"uNomRemote"`
	RegulatedBusID  string     `json:"regulatedBusId"`
}

// SVarCAlgorithm selects the model of every static var compensator.
type SVarCAlgorithm struct {
	svarcs []SVarCDefinition
}

func NewSVarCAlgorithm() *SVarCAlgorithm {
	return &SVarCAlgorithm{svarcs: make([]SVarCDefinition, 0)}
}

// SVarCs returns the definitions in visitation order.
func (a *SVarCAlgorithm) SVarCs() []SVarCDefinition {
	out := make([]SVarCDefinition, len(a.svarcs))
	copy(out, a.svarcs)
	return out
}

func (a *SVarCAlgorithm) Apply(node *network.Node) error {
	for _, s := range node.SVarCs {
		a.svarcs = append(a.svarcs, SVarCDefinition{
			ID:              s.ID,
			Model:           svarcModel(s),
			BMin:            s.BMin,
			BMax:            s.BMax,
			VoltageSetPoint: s.VoltageSetPoint,
			UNom:            s.UNom,
			UMinActivation:  s.UMinActivation,
			UMaxActivation:  s.UMaxActivation,
			USetPointMin:    s.USetPointMin,
			USetPointMax:    s.USetPointMax,
			B0:              s.B0,
			Slope:           s.Slope,
			UNomRemote:      s.UNomRemote,
			RegulatedBusID:  s.RegulatedBusID,
		})
	}
	return nil
}

func svarcModel(s network.StaticVarCompensator) SVarCModel {
	remote := s.ConnectedBusID != s.RegulatedBusID
	prop := s.HasVoltagePerReactivePowerControl && !doubleIsZero(s.Slope)

	switch {
	case s.HasStandByAutomaton && prop && remote:
		return SVarCPVPropRemoteModeHandling
	case s.HasStandByAutomaton && prop:
		return SVarCPVPropModeHandling
	case s.HasStandByAutomaton && remote:
		return SVarCPVRemoteModeHandling
	case s.HasStandByAutomaton:
		return SVarCPVModeHandling
	case prop && remote:
		return SVarCPVPropRemote
	case prop:
		return SVarCPVProp
	case remote:
		return SVarCPVRemote
	}
	return SVarCPV
}
