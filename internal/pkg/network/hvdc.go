package network

import (
	"errors"
	"fmt"
)

// ConverterType is the HVDC converter technology.
type ConverterType int

const (
	LCC ConverterType = iota
	VSC
)

func (t ConverterType) String() string {
	if t == VSC {
		return "VSC"
	}
	return "LCC"
}

// MarshalText writes the converter type name.
func (t ConverterType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a converter type name.
func (t *ConverterType) UnmarshalText(text []byte) error {
	parsed, err := ParseConverterType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseConverterType maps "LCC" and "VSC" to their ConverterType.
func ParseConverterType(s string) (ConverterType, error) {
	switch s {
	case "LCC":
		return LCC, nil
	case "VSC":
		return VSC, nil
	}
	return LCC, fmt.Errorf("unknown converter type %q", s)
}

// Converter is one terminal station of an HVDC line. The reactive fields are
// only meaningful for VSC stations and PowerFactor only for LCC stations.
type Converter struct {
	ID    string
	BusID string
	Type  ConverterType
	Line  *HvdcLine

	VoltageRegulationOn bool
	QMax                float64
	QMin                float64
	Q                   float64
	Points              []ReactiveCurvePoint

	PowerFactor float64
}

// NewLCCConverter returns a line-commutated converter station.
func NewLCCConverter(id, busID string, powerFactor float64) *Converter {
	return &Converter{ID: id, BusID: busID, Type: LCC, PowerFactor: powerFactor}
}

// NewVSCConverter returns a voltage source converter station.
func NewVSCConverter(id, busID string, voltageRegulationOn bool, qMax, qMin, q float64, points []ReactiveCurvePoint) *Converter {
	return &Converter{
		ID:                  id,
		BusID:               busID,
		Type:                VSC,
		VoltageRegulationOn: voltageRegulationOn,
		QMax:                qMax,
		QMin:                qMin,
		Q:                   q,
		Points:              points,
	}
}

// ActivePowerControl holds the AC emulation parameters of an HVDC line. Both
// values must be present in a document.
type ActivePowerControl struct {
	Droop *float64 `json:"Droop" validate:"required"`
	P0    *float64 `json:"P0" validate:"required"`
}

// NewActivePowerControl returns the emulation parameters droop and p0.
func NewActivePowerControl(droop, p0 float64) *ActivePowerControl {
	return &ActivePowerControl{Droop: &droop, P0: &p0}
}

// HvdcLine is a DC link between two converter stations.
type HvdcLine struct {
	ID                    string
	ConverterType         ConverterType
	Converter1            *Converter
	Converter2            *Converter
	ActivePowerControl    *ActivePowerControl
	PMax                  float64
	IsConverter1Rectifier bool
	VdcNom                float64
	PSetPoint             float64
	Rdc                   float64
	LossFactors           [2]float64
}

// NewHvdcLine links both converters to the returned line.
func NewHvdcLine(id string, t ConverterType, c1, c2 *Converter, apc *ActivePowerControl, pMax float64,
	isConverter1Rectifier bool, vdcNom, pSetPoint, rdc float64, lossFactors [2]float64) (*HvdcLine, error) {
	if c1 == nil || c2 == nil {
		return nil, errors.New(fmt.Sprintf("hvdc line %s requires two converters", id))
	}
	l := &HvdcLine{
		ID:                    id,
		ConverterType:         t,
		Converter1:            c1,
		Converter2:            c2,
		ActivePowerControl:    apc,
		PMax:                  pMax,
		IsConverter1Rectifier: isConverter1Rectifier,
		VdcNom:                vdcNom,
		PSetPoint:             pSetPoint,
		Rdc:                   rdc,
		LossFactors:           lossFactors,
	}
	c1.Line = l
	c2.Line = l
	return l, nil
}
