package algo

import (
	"fmt"
)

// HVDCModel is the dynamic model variant selected for an HVDC line.
type HVDCModel int

const (
	HvdcModelUnset HVDCModel = iota
	HvdcPTanPhi
	HvdcPTanPhiDangling
	HvdcPTanPhiDanglingDiagramPQ
	HvdcPTanPhiDiagramPQ
	HvdcPQProp
	HvdcPQPropDangling
	HvdcPQPropDanglingDiagramPQ
	HvdcPQPropDiagramPQ
	HvdcPQPropDiagramPQEmulationSet
	HvdcPQPropEmulationSet
	HvdcPV
	HvdcPVDangling
	HvdcPVDanglingDiagramPQ
	HvdcPVDiagramPQ
	HvdcPVDiagramPQEmulationSet
	HvdcPVEmulationSet
	HvdcPVEmulationSetRpcl2Side1
	HvdcPVDiagramPQEmulationSetRpcl2Side1
	HvdcPVRpcl2Side1
	HvdcPVDiagramPQRpcl2Side1
	HvdcPVDanglingRpcl2Side1
	HvdcPVDanglingDiagramPQRpcl2Side1
	HvdcPVEmulationSetRpcl2Side2
	HvdcPVDiagramPQEmulationSetRpcl2Side2
	HvdcPVRpcl2Side2
	HvdcPVDiagramPQRpcl2Side2
	HvdcPVDanglingRpcl2Side2
	HvdcPVDanglingDiagramPQRpcl2Side2
)

var hvdcModelNames = [...]string{
	"Unset",
	"HvdcPTanPhi",
	"HvdcPTanPhiDangling",
	"HvdcPTanPhiDanglingDiagramPQ",
	"HvdcPTanPhiDiagramPQ",
	"HvdcPQProp",
	"HvdcPQPropDangling",
	"HvdcPQPropDanglingDiagramPQ",
	"HvdcPQPropDiagramPQ",
	"HvdcPQPropDiagramPQEmulationSet",
	"HvdcPQPropEmulationSet",
	"HvdcPV",
	"HvdcPVDangling",
	"HvdcPVDanglingDiagramPQ",
	"HvdcPVDiagramPQ",
	"HvdcPVDiagramPQEmulationSet",
	"HvdcPVEmulationSet",
	"HvdcPVEmulationSetRpcl2Side1",
	"HvdcPVDiagramPQEmulationSetRpcl2Side1",
	"HvdcPVRpcl2Side1",
	"HvdcPVDiagramPQRpcl2Side1",
	"HvdcPVDanglingRpcl2Side1",
	"HvdcPVDanglingDiagramPQRpcl2Side1",
	"HvdcPVEmulationSetRpcl2Side2",
	"HvdcPVDiagramPQEmulationSetRpcl2Side2",
	"HvdcPVRpcl2Side2",
	"HvdcPVDiagramPQRpcl2Side2",
	"HvdcPVDanglingRpcl2Side2",
	"HvdcPVDanglingDiagramPQRpcl2Side2",
}

func (m HVDCModel) String() string {
	if m < 0 || int(m) >= len(hvdcModelNames) {
		return fmt.Sprintf("HVDCModel(%d)", int(m))
	}
	return hvdcModelNames[m]
}

// MarshalText writes the model name.
func (m HVDCModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// HasDiagramModel reports whether the model uses a reactive capability diagram.
func (m HVDCModel) HasDiagramModel() bool {
	return hvdcTraits[m].diagram
}

// HasEmulationModel reports whether the model uses AC emulation.
func (m HVDCModel) HasEmulationModel() bool {
	return hvdcTraits[m].emulation
}

// HasPQPropModel reports whether the model shares reactive power proportionally.
func (m HVDCModel) HasPQPropModel() bool {
	t, ok := hvdcTraits[m]
	return ok && t.family == familyPQProp
}

// HasDanglingModel reports whether only one end of the line is modelled.
func (m HVDCModel) HasDanglingModel() bool {
	return hvdcTraits[m].dangling
}

// HasRpcl2 reports whether the model carries the RPCL2 control loop.
func (m HVDCModel) HasRpcl2() bool {
	return hvdcTraits[m].rpcl2 != noRpcl2
}

// ConverterStationOnSide2 reports whether static side 2 is wired to side 1 of the model.
func (m HVDCModel) ConverterStationOnSide2() bool {
	return hvdcTraits[m].rpcl2 == rpcl2Side2
}
