package outputs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
	"github.com/viant/afs"
	"gotest.tools/v3/assert"
)

type settings map[string]map[string]float64

func (s settings) SettingForHvdcLine(lineID string) (map[string]float64, bool) {
	set, ok := s[lineID]
	return set, ok
}

func vscLine(id string, position algo.Position, model algo.HVDCModel) algo.HVDCDefinition {
	on, off := true, false
	vsc1 := algo.NewVSCDefinition("VSC1", 20, -30, 0, 100, nil)
	vsc2 := algo.NewVSCDefinition("VSC2", 40, -10, 0, 100, nil)
	return algo.HVDCDefinition{
		ID:                            id,
		ConverterType:                 network.VSC,
		Converter1ID:                  "VSC1",
		Converter1BusID:               "B1",
		Converter1VoltageRegulationOn: &on,
		Converter2ID:                  "VSC2",
		Converter2BusID:               "B2",
		Converter2VoltageRegulationOn: &off,
		Position:                      position,
		Model:                         model,
		PMax:                          100,
		VSCDefinition1:                &vsc1,
		VSCDefinition2:                &vsc2,
		IsConverter1Rectifier:         true,
		VdcNom:                        100,
		PSetPoint:                     -100,
		Rdc:                           1,
		LossFactors:                   [2]float64{0.01, 0.02},
	}
}

func lccLine(id string, position algo.Position, model algo.HVDCModel) algo.HVDCDefinition {
	return algo.HVDCDefinition{
		ID:                    id,
		ConverterType:         network.LCC,
		Converter1ID:          "LCC1",
		Converter1BusID:       "B1",
		Converter2ID:          "LCC2",
		Converter2BusID:       "B2",
		Position:              position,
		Model:                 model,
		PowerFactors:          [2]float64{0.8, 0.6},
		PMax:                  100,
		IsConverter1Rectifier: true,
		VdcNom:                100,
		PSetPoint:             -100,
		Rdc:                   1,
		LossFactors:           [2]float64{0.01, 0.02},
	}
}

func double(t *testing.T, set *ParametersSet, name string) float64 {
	t.Helper()
	p, ok := set.Parameter(name)
	assert.Assert(t, ok, "missing parameter %s", name)
	assert.Equal(t, p.Type, TypeDouble)
	v, err := strconv.ParseFloat(p.Value, 64)
	assert.NilError(t, err)
	return v
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConstants(t *testing.T) {
	assert.Equal(t, DiagramFilename(`A/B\C`), "A_B_C_Diagram.txt")
	assert.Equal(t, UUID("GEN"), UUID("GEN"))
	assert.Assert(t, UUID("GEN") != UUID("GEN2"))
	assert.Assert(t, near(ComputeQmax(0.8, 100), 75))
	assert.Assert(t, near(ComputeKAC(math.Pi), 1.8))
	assert.Equal(t, ComputePSet(50), 0.5)
	assert.Equal(t, joinURL("mem://localhost/out/", "case_Diagram", "a.txt"), "mem://localhost/out/case_Diagram/a.txt")
}

func TestDiagramContent(t *testing.T) {
	table := newDiagramTable("GEN", []network.ReactiveCurvePoint{
		{P: 10, QMin: -5, QMax: 5},
		{P: 0, QMin: -3, QMax: 3},
	}, 0, 10, -5, 5)
	id := UUID("GEN")
	expected := "#1" +
		"\ndouble " + id + "_tableqmin(2,2)\n0 -0.03\n0.1 -0.05" +
		"\ndouble " + id + "_tableqmax(2,2)\n0 0.03\n0.1 0.05"
	assert.Equal(t, string(table.content()), expected)

	lcc := lccTable("LCC", 0.8, 100)
	id = UUID("LCC")
	expected = "#1" +
		"\ndouble " + id + "_tableqmin(2,2)\n-1 -0.75\n1 -0.75" +
		"\ndouble " + id + "_tableqmax(2,2)\n-1 0.75\n1 0.75"
	assert.Equal(t, string(lcc.content()), expected)
}

func TestWriteDiagrams(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(afs.New(), dir, "case")

	generators := []algo.GeneratorDefinition{
		{ID: "G/1", Model: algo.SignalNRectangular, PMin: 0, PMax: 100, QMin: -10, QMax: 10},
		{ID: "G2", Model: algo.GeneratorNetwork},
	}
	vsc := vscLine("HVDC1", algo.SecondInMainComponent, algo.HvdcPVDanglingDiagramPQ)
	lcc := lccLine("HVDC2", algo.BothInMainComponent, algo.HvdcPTanPhiDiagramPQ)
	noDiagram := lccLine("HVDC3", algo.BothInMainComponent, algo.HvdcPTanPhi)
	noDiagram.Converter1ID, noDiagram.Converter2ID = "LCC3", "LCC4"
	defs := algo.HVDCLineDefinitions{
		Lines: map[string]algo.HVDCDefinition{"HVDC1": vsc, "HVDC2": lcc, "HVDC3": noDiagram},
		VSCBusVSCDefinitions: map[string]algo.VSCDefinition{
			"B2": *vsc.VSCDefinition2,
			"B9": algo.NewVSCDefinition("VSC9", 1, -1, 0, 10, nil),
		},
	}

	n, err := w.WriteDiagrams(context.Background(), generators, defs)
	assert.NilError(t, err)
	assert.Equal(t, n, 5)

	entries, err := os.ReadDir(filepath.Join(dir, "case_Diagram"))
	assert.NilError(t, err)
	names := make([]string, 0)
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.DeepEqual(t, names, []string{
		"G_1_Diagram.txt", "LCC1_Diagram.txt", "LCC2_Diagram.txt", "VSC2_Diagram.txt", "VSC9_Diagram.txt",
	})

	data, err := os.ReadFile(filepath.Join(dir, "case_Diagram", "G_1_Diagram.txt"))
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(string(data), "#1\ndouble "+UUID("G/1")+"_tableqmin(2,2)\n0 -0.1\n1 -0.1"))
	assert.Equal(t, len(w.Manifest().Entries()), 5)
}

func TestHVDCParamsWarm(t *testing.T) {
	params := NewHVDCParams(config.Warm, "/out/case_Diagram", nil)

	set, err := params.LineSet(vscLine("HVDC1", algo.BothInMainComponent, algo.HvdcPV))
	assert.NilError(t, err)
	ref, ok := set.Reference("hvdc_P10Pu")
	assert.Assert(t, ok)
	assert.DeepEqual(t, ref, Reference{Type: TypeDouble, Name: "hvdc_P10Pu", OrigData: "IIDM", OrigName: "p1_pu"})
	ref, _ = set.Reference("hvdc_UPhase20")
	assert.Equal(t, ref.OrigName, "angle2_pu")
	assert.Equal(t, double(t, set, "hvdc_Q1MinPu"), -math.MaxFloat64)
	assert.Equal(t, double(t, set, "hvdc_Q1Nom"), 100.)
	assert.Equal(t, double(t, set, "hvdc_Lambda2Pu"), 0.)
	p, _ := set.Parameter("hvdc_modeU10")
	assert.DeepEqual(t, p, Parameter{Type: TypeBool, Name: "hvdc_modeU10", Value: "true"})
	_, ok = set.Reference("P1Ref_ValueIn")
	assert.Assert(t, ok)
	_, ok = set.Reference("hvdc_QPercent1")
	assert.Assert(t, !ok)
}

func TestHVDCParamsSecondInMainComponent(t *testing.T) {
	params := NewHVDCParams(config.Warm, "/out/case_Diagram", nil)

	set, err := params.LineSet(vscLine("HVDC1", algo.SecondInMainComponent, algo.HvdcPQPropDanglingDiagramPQ))
	assert.NilError(t, err)
	ref, _ := set.Reference("hvdc_P10Pu")
	assert.Equal(t, ref.OrigName, "p2_pu")
	ref, _ = set.Reference("hvdc_Q1Ref0Pu")
	assert.Equal(t, ref.ComponentID, "VSC2")
	ref, _ = set.Reference("hvdc_QPercent1")
	assert.Equal(t, ref.ComponentID, "VSC2")
	p, _ := set.Parameter("hvdc_modeU10")
	assert.Equal(t, p.Value, "false")

	p, _ = set.Parameter("hvdc_QInj1MinTableFile")
	assert.Equal(t, p.Value, "/out/case_Diagram/VSC2_Diagram.txt")
	p, _ = set.Parameter("hvdc_QInj1MaxTableName")
	assert.Equal(t, p.Value, UUID("VSC2")+"_tableqmax")
	assert.Assert(t, near(double(t, set, "hvdc_QInj1Min0Pu"), -0.11))
	assert.Assert(t, near(double(t, set, "hvdc_QInj1Max0Pu"), 0.41))
	assert.Equal(t, double(t, set, "hvdc_Q1Nom"), 40.)
	assert.Assert(t, !set.HasParameter("hvdc_QInj2MinTableFile"))
	assert.Assert(t, !set.HasParameter("hvdc_Q2Nom"))
	_, ok := set.Reference("P1Ref_ValueIn")
	assert.Assert(t, !ok)
}

func TestHVDCParamsFlatLCC(t *testing.T) {
	params := NewHVDCParams(config.Flat, "/out/case_Diagram", nil)

	set, err := params.LineSet(lccLine("HVDC2", algo.BothInMainComponent, algo.HvdcPTanPhiDiagramPQ))
	assert.NilError(t, err)
	assert.Equal(t, double(t, set, "hvdc_U10Pu"), 1.)
	assert.Assert(t, near(double(t, set, "hvdc_P10Pu"), -1))
	assert.Assert(t, near(double(t, set, "hvdc_P1RefSetPu"), -1))
	assert.Assert(t, near(double(t, set, "hvdc_P20Pu"), (0.99-0.01)*0.98))
	assert.Assert(t, near(double(t, set, "hvdc_Q10Pu"), -0.8))
	assert.Assert(t, near(double(t, set, "hvdc_Q20Pu"), -0.6*(0.99-0.01)*0.98))

	assert.Assert(t, near(double(t, set, "hvdc_QInj1Max0Pu"), (75+1)/100.))
	assert.Assert(t, near(double(t, set, "hvdc_QInj2Min0Pu"), (-ComputeQmax(0.6, 100)-1)/100.))
	ref, _ := set.Reference("hvdc_CosPhi2Ref0")
	assert.Equal(t, ref.ComponentID, "LCC2")
	assert.Assert(t, !set.HasParameter("hvdc_Q1Nom"))
}

func TestHVDCParamsFlatSwapped(t *testing.T) {
	params := NewHVDCParams(config.Flat, "/out/case_Diagram", nil)

	set, err := params.LineSet(vscLine("HVDC1", algo.SecondInMainComponent, algo.HvdcPVDangling))
	assert.NilError(t, err)
	assert.Assert(t, near(double(t, set, "hvdc_P10Pu"), -((0.98-0.01)*0.99)))
	assert.Assert(t, near(double(t, set, "hvdc_P20Pu"), 1))
	ref, _ := set.Reference("hvdc_Q10Pu")
	assert.Equal(t, ref.OrigName, "targetQ_pu")
	assert.Equal(t, ref.ComponentID, "VSC2")
}

func TestHVDCParamsRpcl2(t *testing.T) {
	full := map[string]float64{
		"reactivePowerControlLoop_QrPu":           1,
		"reactivePowerControlLoop_CqMaxPu":        2,
		"reactivePowerControlLoop_DeltaURefMaxPu": 3,
		"reactivePowerControlLoop_Tech":           4,
		"reactivePowerControlLoop_Ti":             5,
		"hvdc_QNom":                               60,
		"hvdc_LambdaPu":                           0.5,
	}
	params := NewHVDCParams(config.Warm, "/out/case_Diagram", settings{"HVDC1": full})

	set, err := params.LineSet(vscLine("HVDC1", algo.BothInMainComponent, algo.HvdcPVDiagramPQRpcl2Side1))
	assert.NilError(t, err)
	assert.Equal(t, double(t, set, "reactivePowerControlLoop_Ti"), 5.)
	assert.Equal(t, double(t, set, "hvdc_Q1Nom"), 60.)
	assert.Equal(t, double(t, set, "hvdc_Q2Nom"), 60.)
	assert.Equal(t, double(t, set, "hvdc_Lambda2Pu"), 0.5)

	partial := map[string]float64{"reactivePowerControlLoop_QrPu": 1}
	params = NewHVDCParams(config.Warm, "/out/case_Diagram", settings{"HVDC1": partial})
	_, err = params.LineSet(vscLine("HVDC1", algo.BothInMainComponent, algo.HvdcPVRpcl2Side1))
	assert.ErrorContains(t, err, "reactivePowerControlLoop_CqMaxPu missing")

	params = NewHVDCParams(config.Warm, "/out/case_Diagram", settings{})
	_, err = params.LineSet(vscLine("HVDC1", algo.BothInMainComponent, algo.HvdcPVRpcl2Side1))
	assert.ErrorContains(t, err, "no setting")
}

func TestHVDCParamsEmulation(t *testing.T) {
	droop, p0 := 10., 50.
	def := vscLine("HVDC1", algo.BothInMainComponent, algo.HvdcPVEmulationSet)
	def.Droop, def.P0 = &droop, &p0

	set, err := NewHVDCParams(config.Warm, "", nil).LineSet(def)
	assert.NilError(t, err)
	assert.Equal(t, double(t, set, "acemulation_tFilter"), 50.)
	assert.Assert(t, near(double(t, set, "acemulation_KACEmulation"), 18/math.Pi))
	assert.Equal(t, double(t, set, "acemulation_PRefSet0Pu"), 0.5)
	_, ok := set.Reference("P1Ref_ValueIn")
	assert.Assert(t, !ok)

	def.Droop = nil
	_, err = NewHVDCParams(config.Warm, "", nil).LineSet(def)
	assert.ErrorIs(t, err, algo.ErrMissingEmulationData)
}

func TestWritePar(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(afs.New(), dir, "case")

	defs := algo.HVDCLineDefinitions{Lines: map[string]algo.HVDCDefinition{
		"B": lccLine("B", algo.FirstInMainComponent, algo.HvdcPTanPhiDangling),
		"A": vscLine("A", algo.BothInMainComponent, algo.HvdcPV),
	}}
	sets, err := NewHVDCParams(config.Warm, w.DiagramDir(), nil).Sets(defs)
	assert.NilError(t, err)
	assert.Equal(t, sets[0].ID, "A")
	assert.NilError(t, w.WritePar(context.Background(), sets))

	data, err := os.ReadFile(filepath.Join(dir, "case.par"))
	assert.NilError(t, err)
	content := string(data)
	assert.Assert(t, strings.HasPrefix(content, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Assert(t, strings.Contains(content, `<parametersSet xmlns="http://www.rte-france.com/dynawo">`))
	assert.Assert(t, strings.Contains(content, `<par type="DOUBLE" name="hvdc_KLosses" value="1"></par>`))
	assert.Assert(t, strings.Contains(content,
		`<reference type="DOUBLE" name="hvdc_CosPhi1Ref0" origData="IIDM" origName="powerFactor" componentId="LCC1"></reference>`))

	decoded, err := UnmarshalPar(data)
	assert.NilError(t, err)
	assert.DeepEqual(t, decoded, sets)
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(afs.New(), dir, "case")
	assert.NilError(t, w.WritePar(context.Background(), nil))
	assert.NilError(t, w.WriteManifest(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "case.manifest.json"))
	assert.NilError(t, err)
	entries := make([]ManifestEntry, 0)
	assert.NilError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, len(entries), 1)
	assert.Equal(t, entries[0].URL, filepath.Join(dir, "case.par"))

	par, err := os.ReadFile(filepath.Join(dir, "case.par"))
	assert.NilError(t, err)
	sum, err := Hash(par)
	assert.NilError(t, err)
	assert.Equal(t, entries[0].Size, len(par))
	assert.Equal(t, entries[0].Hash, fmt.Sprintf("%016x", sum))
}
