package algo

import (
	"testing"

	"github.com/ohowland/dfl_launcher/internal/pkg/network"
	"gotest.tools/v3/assert"
)

func regulatingGenerator(id, bus string) network.Generator {
	return network.Generator{
		ID:                  id,
		VoltageRegulationOn: true,
		QMin:                -10,
		QMax:                10,
		PMin:                -100,
		PMax:                100,
		TargetP:             -50,
		VNom:                20,
		RegulatedBusID:      bus,
		ConnectedBusID:      bus,
	}
}

func curve(points ...network.ReactiveCurvePoint) []network.ReactiveCurvePoint {
	return points
}

func TestGeneratorModels(t *testing.T) {
	vl := network.NewVoltageLevel("VL")
	nodes := make([]*network.Node, 0)
	node := func(id string, gens ...network.Generator) {
		n := network.NewNode(id, vl, 400, nil, false)
		n.Generators = gens
		nodes = append(nodes, n)
	}

	local := regulatingGenerator("LOCAL", "0")
	node("0", local)

	remote := regulatingGenerator("REMOTE", "1")
	remote.ConnectedBusID = "9"
	node("1", remote)

	shared1 := regulatingGenerator("SHARED1", "2")
	shared2 := regulatingGenerator("SHARED2", "2")
	node("2", shared1, shared2)

	invalidP := regulatingGenerator("INVALIDP", "3")
	invalidP.TargetP = -500
	node("3", invalidP)

	noRegulation := regulatingGenerator("NOREG", "3")
	noRegulation.VoltageRegulationOn = false
	node("4", noRegulation)

	tfo := regulatingGenerator("TFO", "5")
	tfo.VNom = 400
	node("5", tfo)

	svc := regulatingGenerator("SVC", "6")
	node("6", svc)

	rpcl2 := regulatingGenerator("RPCL2", "7")
	rpcl2.VNom = 400
	node("7", rpcl2)

	a := NewGeneratorAlgorithm(GeneratorOptions{
		InfiniteReactiveLimits: true,
		TfoVoltageLevel:        100,
		Regulation: network.BusRegulationMap{
			"0": network.One, "1": network.One, "2": network.Multiple, "5": network.One,
			"6": network.One, "7": network.One,
		},
		GeneratorsInSVC: map[string]bool{"SVC": false, "RPCL2": true},
	})
	assert.NilError(t, NewDriver(a).Run(nodes))

	models := make(map[string]GeneratorModel)
	for _, g := range a.Generators() {
		models[g.ID] = g.Model
	}
	assert.DeepEqual(t, models, map[string]GeneratorModel{
		"LOCAL":    SignalNInfinite,
		"REMOTE":   RemoteSignalNInfinite,
		"SHARED1":  PropSignalNInfinite,
		"SHARED2":  PropSignalNInfinite,
		"INVALIDP": GeneratorNetwork,
		"NOREG":    GeneratorNetwork,
		"TFO":      SignalNTfoInfinite,
		"SVC":      SignalNRpclInfinite,
		"RPCL2":    SignalNTfoRpcl2Infinite,
	})
	assert.DeepEqual(t, a.BusesRegulatedBySeveral(), map[string]string{"2": "SHARED1"})
	assert.Assert(t, a.AtLeastOneRegulating())
}

func TestGeneratorDiagrams(t *testing.T) {
	vl := network.NewVoltageLevel("VL")
	n := network.NewNode("0", vl, 400, nil, false)

	rectangular := regulatingGenerator("RECT", "0")
	rectangular.Points = curve(
		network.ReactiveCurvePoint{P: 0, QMin: -5, QMax: 5},
		network.ReactiveCurvePoint{P: 10, QMin: -5, QMax: 5},
	)
	pq := regulatingGenerator("PQ", "0")
	pq.Points = curve(
		network.ReactiveCurvePoint{P: 0, QMin: -5, QMax: 5},
		network.ReactiveCurvePoint{P: 10, QMin: -3, QMax: 3},
	)
	onePoint := regulatingGenerator("ONE", "0")
	onePoint.Points = curve(network.ReactiveCurvePoint{P: 0, QMin: -5, QMax: 5})
	allPEqual := regulatingGenerator("SAMEP", "0")
	allPEqual.Points = curve(
		network.ReactiveCurvePoint{P: 1, QMin: -5, QMax: 5},
		network.ReactiveCurvePoint{P: 1, QMin: -3, QMax: 3},
	)
	flatQ := regulatingGenerator("FLATQ", "0")
	flatQ.QMin, flatQ.QMax = 4, 4
	n.Generators = []network.Generator{rectangular, pq, onePoint, allPEqual, flatQ}

	a := NewGeneratorAlgorithm(GeneratorOptions{
		TfoVoltageLevel: 100,
		Regulation:      network.BusRegulationMap{"0": network.One},
	})
	assert.NilError(t, a.Apply(n))

	gens := a.Generators()
	assert.Equal(t, len(gens), 5)
	assert.Equal(t, gens[0].Model, SignalNRectangular)
	assert.Equal(t, gens[1].Model, DiagramPQSignalN)
	assert.Equal(t, gens[2].Model, GeneratorNetwork)
	assert.Equal(t, gens[3].Model, GeneratorNetwork)
	assert.Equal(t, gens[4].Model, GeneratorNetwork)

	assert.Assert(t, gens[0].Model.IsUsingDiagram())
	assert.Assert(t, gens[0].Model.IsUsingRectangularDiagram())
	assert.Assert(t, !gens[1].Model.IsUsingRectangularDiagram())
	assert.Equal(t, gens[0].NodeID, "0")
}

func TestGeneratorSharedThroughSwitch(t *testing.T) {
	vl := network.NewVoltageLevel("VL")
	a := network.NewNode("A", vl, 400, nil, false)
	b := network.NewNode("B", vl, 400, nil, false)
	ga := regulatingGenerator("GA", "A")
	ga.ConnectedBusID = "A2"
	a.Generators = []network.Generator{ga}
	b.Generators = []network.Generator{regulatingGenerator("GB", "B")}

	switches := network.NewSwitchMap()
	switches.Add("A", "VL", "B")

	algo := NewGeneratorAlgorithm(GeneratorOptions{
		InfiniteReactiveLimits: true,
		TfoVoltageLevel:        1000,
		Regulation:             network.BusRegulationMap{"A": network.Multiple, "B": network.Multiple},
		Switches:               switches,
	})
	assert.NilError(t, algo.Apply(a))
	assert.Equal(t, algo.Generators()[0].Model, PropSignalNInfinite)
	assert.DeepEqual(t, algo.BusesRegulatedBySeveral(), map[string]string{"A": "GA"})
}

func TestGeneratorModelPredicates(t *testing.T) {
	assert.Assert(t, DiagramPQTfoRpcl2SignalN.HasTransformer())
	assert.Assert(t, DiagramPQTfoRpcl2SignalN.HasRpcl())
	assert.Assert(t, DiagramPQTfoRpcl2SignalN.HasRpcl2())
	assert.Assert(t, SignalNRpclInfinite.HasRpcl())
	assert.Assert(t, !SignalNRpclInfinite.HasRpcl2())
	assert.Assert(t, !GeneratorNetwork.IsUsingDiagram())
	assert.Assert(t, GeneratorNetwork.IsNetwork())
	assert.Assert(t, RemoteDiagramPQSignalN.IsRegulatingRemotely())
	assert.Equal(t, PropDiagramPQSignalN.String(), "PROP_DIAGRAM_PQ_SIGNALN")
}
