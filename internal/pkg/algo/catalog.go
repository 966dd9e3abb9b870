package algo

import (
	"fmt"
)

type modelFamily int

const (
	familyPTanPhi modelFamily = iota
	familyPV
	familyPQProp
)

type rpcl2Side int

const (
	noRpcl2 rpcl2Side = iota
	rpcl2Side1
	rpcl2Side2
)

// modelAxes are the independent choices that identify one HVDC model.
type modelAxes struct {
	family    modelFamily
	dangling  bool
	diagram   bool
	emulation bool
	rpcl2     rpcl2Side
}

// hvdcCatalog lists every valid combination of axes. Combinations missing
// from the table have no model.
var hvdcCatalog = map[modelAxes]HVDCModel{
	{familyPTanPhi, false, false, false, noRpcl2}: HvdcPTanPhi,
	{familyPTanPhi, true, false, false, noRpcl2}:  HvdcPTanPhiDangling,
	{familyPTanPhi, true, true, false, noRpcl2}:   HvdcPTanPhiDanglingDiagramPQ,
	{familyPTanPhi, false, true, false, noRpcl2}:  HvdcPTanPhiDiagramPQ,

	{familyPQProp, false, false, false, noRpcl2}: HvdcPQProp,
	{familyPQProp, true, false, false, noRpcl2}:  HvdcPQPropDangling,
	{familyPQProp, true, true, false, noRpcl2}:   HvdcPQPropDanglingDiagramPQ,
	{familyPQProp, false, true, false, noRpcl2}:  HvdcPQPropDiagramPQ,
	{familyPQProp, false, true, true, noRpcl2}:   HvdcPQPropDiagramPQEmulationSet,
	{familyPQProp, false, false, true, noRpcl2}:  HvdcPQPropEmulationSet,

	{familyPV, false, false, false, noRpcl2}: HvdcPV,
	{familyPV, true, false, false, noRpcl2}:  HvdcPVDangling,
	{familyPV, true, true, false, noRpcl2}:   HvdcPVDanglingDiagramPQ,
	{familyPV, false, true, false, noRpcl2}:  HvdcPVDiagramPQ,
	{familyPV, false, true, true, noRpcl2}:   HvdcPVDiagramPQEmulationSet,
	{familyPV, false, false, true, noRpcl2}:  HvdcPVEmulationSet,

	{familyPV, false, false, true, rpcl2Side1}: HvdcPVEmulationSetRpcl2Side1,
	{familyPV, false, true, true, rpcl2Side1}:  HvdcPVDiagramPQEmulationSetRpcl2Side1,
	{familyPV, false, false, false, rpcl2Side1}: HvdcPVRpcl2Side1,
	{familyPV, false, true, false, rpcl2Side1}:  HvdcPVDiagramPQRpcl2Side1,
	{familyPV, true, false, false, rpcl2Side1}:  HvdcPVDanglingRpcl2Side1,
	{familyPV, true, true, false, rpcl2Side1}:   HvdcPVDanglingDiagramPQRpcl2Side1,

	{familyPV, false, false, true, rpcl2Side2}: HvdcPVEmulationSetRpcl2Side2,
	{familyPV, false, true, true, rpcl2Side2}:  HvdcPVDiagramPQEmulationSetRpcl2Side2,
	{familyPV, false, false, false, rpcl2Side2}: HvdcPVRpcl2Side2,
	{familyPV, false, true, false, rpcl2Side2}:  HvdcPVDiagramPQRpcl2Side2,
	{familyPV, true, false, false, rpcl2Side2}:  HvdcPVDanglingRpcl2Side2,
	{familyPV, true, true, false, rpcl2Side2}:   HvdcPVDanglingDiagramPQRpcl2Side2,
}

// hvdcTraits is the inverse of hvdcCatalog.
var hvdcTraits = func() map[HVDCModel]modelAxes {
	traits := make(map[HVDCModel]modelAxes, len(hvdcCatalog))
	for axes, model := range hvdcCatalog {
		traits[model] = axes
	}
	return traits
}()

func lookupModel(axes modelAxes) (HVDCModel, error) {
	model, ok := hvdcCatalog[axes]
	if !ok {
		return HvdcModelUnset, fmt.Errorf("%w: %+v", ErrNoCatalogEntry, axes)
	}
	return model, nil
}
