package algo

import (
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// Position tells which ends of an HVDC line lie in the main connected component.
type Position int

const (
	PositionUnset Position = iota
	FirstInMainComponent
	SecondInMainComponent
	BothInMainComponent
)

func (p Position) String() string {
	switch p {
	case FirstInMainComponent:
		return "FIRST_IN_MAIN_COMPONENT"
	case SecondInMainComponent:
		return "SECOND_IN_MAIN_COMPONENT"
	case BothInMainComponent:
		return "BOTH_IN_MAIN_COMPONENT"
	default:
		return "UNSET"
	}
}

// MarshalText writes the position name.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// VSCDefinition is the reactive description of a VSC converter station.
type VSCDefinition struct {
	ID     string                       `json:"id"`
	QMax   float64                      `json:"qmax"`
	QMin   float64                      `json:"qmin"`
	Q      float64                      `json:"q"`
	PMax   float64                      `json:"pmax"`
	PMin   float64                      `json:"pmin"`
	Points []network.ReactiveCurvePoint `json:"points"`
}

// NewVSCDefinition captures a station. PMin is always the opposite of pMax.
func NewVSCDefinition(id string, qMax, qMin, q, pMax float64, points []network.ReactiveCurvePoint) VSCDefinition {
	pts := make([]network.ReactiveCurvePoint, len(points))
	copy(pts, points)
	return VSCDefinition{ID: id, QMax: qMax, QMin: qMin, Q: q, PMax: pMax, PMin: -pMax, Points: pts}
}

// Equal compares two definitions, floats within epsilon.
func (d VSCDefinition) Equal(other VSCDefinition) bool {
	if d.ID != other.ID || len(d.Points) != len(other.Points) {
		return false
	}
	if !doubleEquals(d.QMax, other.QMax) || !doubleEquals(d.QMin, other.QMin) || !doubleEquals(d.Q, other.Q) ||
		!doubleEquals(d.PMax, other.PMax) || !doubleEquals(d.PMin, other.PMin) {
		return false
	}
	for i := range d.Points {
		a, b := d.Points[i], other.Points[i]
		if !doubleEquals(a.P, b.P) || !doubleEquals(a.QMin, b.QMin) || !doubleEquals(a.QMax, b.QMax) {
			return false
		}
	}
	return true
}

func (d VSCDefinition) clone() VSCDefinition {
	return NewVSCDefinition(d.ID, d.QMax, d.QMin, d.Q, d.PMax, d.Points)
}

// HVDCDefinition is the launcher view of one HVDC line.
type HVDCDefinition struct {
	ID                            string                `json:"id"`
	ConverterType                 network.ConverterType `json:"converterType"`
	Converter1ID                  string                `json:"converter1Id"`
	Converter1BusID               string                `json:"converter1BusId"`
	Converter1VoltageRegulationOn *bool                 `json:"converter1VoltageRegulationOn,omitempty"`
	Converter2ID                  string                `json:"converter2Id"`
	Converter2BusID               string                `json:"converter2BusId"`
	Converter2VoltageRegulationOn *bool                 `json:"converter2VoltageRegulationOn,omitempty"`
	Position                      Position              `json:"position"`
	Model                         HVDCModel             `json:"model"`
	PowerFactors                  [2]float64            `json:"powerFactors"`
	PMax                          float64               `json:"pmax"`
	VSCDefinition1                *VSCDefinition        `json:"vscDefinition1,omitempty"`
	VSCDefinition2                *VSCDefinition        `json:"vscDefinition2,omitempty"`
	Droop                         *float64              `json:"droop,omitempty"`
	P0                            *float64              `json:"p0,omitempty"`
	IsConverter1Rectifier         bool                  `json:"isConverter1Rectifier"`
	VdcNom                        float64               `json:"vdcNom"`
	PSetPoint                     float64               `json:"pSetPoint"`
	Rdc                           float64               `json:"rdc"`
	LossFactors                   [2]float64            `json:"lossFactors"`
	ConverterStationSide1         bool                  `json:"converterStationSide1"`
}

// HasDiagramModel forwards to the model.
func (d HVDCDefinition) HasDiagramModel() bool { return d.Model.HasDiagramModel() }

// HasEmulationModel forwards to the model.
func (d HVDCDefinition) HasEmulationModel() bool { return d.Model.HasEmulationModel() }

// HasPQPropModel forwards to the model.
func (d HVDCDefinition) HasPQPropModel() bool { return d.Model.HasPQPropModel() }

// HasDanglingModel forwards to the model.
func (d HVDCDefinition) HasDanglingModel() bool { return d.Model.HasDanglingModel() }

// HasRpcl2 forwards to the model.
func (d HVDCDefinition) HasRpcl2() bool { return d.Model.HasRpcl2() }

// ConverterStationOnSide2 forwards to the model.
func (d HVDCDefinition) ConverterStationOnSide2() bool { return d.Model.ConverterStationOnSide2() }

// ConverterIDs returns the converter ids that lie in the main component.
func (d HVDCDefinition) ConverterIDs() []string {
	switch d.Position {
	case FirstInMainComponent:
		return []string{d.Converter1ID}
	case SecondInMainComponent:
		return []string{d.Converter2ID}
	default:
		return []string{d.Converter1ID, d.Converter2ID}
	}
}

func (d HVDCDefinition) clone() HVDCDefinition {
	out := d
	if d.Converter1VoltageRegulationOn != nil {
		v := *d.Converter1VoltageRegulationOn
		out.Converter1VoltageRegulationOn = &v
	}
	if d.Converter2VoltageRegulationOn != nil {
		v := *d.Converter2VoltageRegulationOn
		out.Converter2VoltageRegulationOn = &v
	}
	if d.VSCDefinition1 != nil {
		v := d.VSCDefinition1.clone()
		out.VSCDefinition1 = &v
	}
	if d.VSCDefinition2 != nil {
		v := d.VSCDefinition2.clone()
		out.VSCDefinition2 = &v
	}
	if d.Droop != nil {
		v := *d.Droop
		out.Droop = &v
	}
	if d.P0 != nil {
		v := *d.P0
		out.P0 = &v
	}
	return out
}

// HVDCLineDefinitions is the frozen result of the HVDC algorithm.
type HVDCLineDefinitions struct {
	// Lines by line id.
	Lines map[string]HVDCDefinition `json:"lines"`
	// VSCBusVSCDefinitions maps each multiply regulated bus to the first VSC station recorded on it.
	VSCBusVSCDefinitions map[string]VSCDefinition `json:"vscBusVscDefinitions"`
}
