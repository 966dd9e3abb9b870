/*
parhvdc.go Parameters sets of the HVDC line models: starting point, reactive limit tables,
reactive control loop and AC emulation parameters.
*/

package outputs

import (
	"fmt"
	"log"
	"math"

	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

const (
	qNomDefault        = 100.
	acEmulationTFilter = 50.
)

// rpcl2Parameters must be present in the setting of every RPCL2 line.
var rpcl2Parameters = []string{
	"reactivePowerControlLoop_QrPu",
	"reactivePowerControlLoop_CqMaxPu",
	"reactivePowerControlLoop_DeltaURefMaxPu",
	"reactivePowerControlLoop_Tech",
	"reactivePowerControlLoop_Ti",
}

// SettingSource gives the setting parameters of the association holding an HVDC line.
type SettingSource interface {
	SettingForHvdcLine(lineID string) (map[string]float64, bool)
}

// HVDCParams builds the parameters sets of HVDC lines.
type HVDCParams struct {
	mode       config.StartingPointMode
	diagramDir string
	settings   SettingSource
}

// NewHVDCParams returns a builder referencing diagram files in diagramDir.
func NewHVDCParams(mode config.StartingPointMode, diagramDir string, settings SettingSource) HVDCParams {
	return HVDCParams{mode: mode, diagramDir: diagramDir, settings: settings}
}

// Sets returns one parameters set per line, ordered by line id.
func (p HVDCParams) Sets(defs algo.HVDCLineDefinitions) ([]*ParametersSet, error) {
	sets := make([]*ParametersSet, 0, len(defs.Lines))
	for _, id := range sortedKeys(defs.Lines) {
		set, err := p.LineSet(defs.Lines[id])
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// LineSet returns the parameters set of one line.
func (p HVDCParams) LineSet(def algo.HVDCDefinition) (*ParametersSet, error) {
	set := NewParametersSet(def.ID)

	// converter ids seen as sides 1 and 2 of the model
	first, second := "1", "2"
	side1, side2 := def.Converter1ID, def.Converter2ID
	if def.Position == algo.SecondInMainComponent {
		first, second = "2", "1"
		side1, side2 = def.Converter2ID, def.Converter1ID
	}

	setting, hasSetting := p.setting(def)

	switch p.mode {
	case config.Flat:
		p.flatStartingPoint(set, def, first == "2", side1, side2)
	default:
		set.AddReference("hvdc_P10Pu", "p"+first+"_pu", "")
		set.AddReference("hvdc_P1RefSetPu", "p"+first+"_pu", "")
		set.AddReference("hvdc_Q10Pu", "q"+first+"_pu", "")
		set.AddReference("hvdc_U10Pu", "v"+first+"_pu", "")
		set.AddReference("hvdc_UPhase10", "angle"+first+"_pu", "")
		set.AddReference("hvdc_P20Pu", "p"+second+"_pu", "")
		set.AddReference("hvdc_Q20Pu", "q"+second+"_pu", "")
		set.AddReference("hvdc_U20Pu", "v"+second+"_pu", "")
		set.AddReference("hvdc_UPhase20", "angle"+second+"_pu", "")
	}
	set.AddReference("hvdc_PMaxPu", "pMax_pu", "")
	set.AddDouble("hvdc_KLosses", 1.0)

	if !def.HasDiagramModel() {
		set.AddDouble("hvdc_Q1MinPu", -math.MaxFloat64)
		set.AddDouble("hvdc_Q1MaxPu", math.MaxFloat64)
		set.AddDouble("hvdc_Q2MinPu", -math.MaxFloat64)
		set.AddDouble("hvdc_Q2MaxPu", math.MaxFloat64)
	} else {
		main, n := def.Converter1ID, 1
		if def.Position == algo.SecondInMainComponent {
			main, n = def.Converter2ID, 2
		}
		p.diagramParams(set, def, setting, main, n, 1)
		if def.Position == algo.BothInMainComponent {
			p.diagramParams(set, def, setting, def.Converter2ID, 2, 2)
		}
	}

	if def.ConverterType == network.VSC {
		regulation1, regulation2 := boolValue(def.Converter1VoltageRegulationOn), boolValue(def.Converter2VoltageRegulationOn)
		if def.Position == algo.SecondInMainComponent {
			regulation1, regulation2 = regulation2, regulation1
		}
		set.AddBool("hvdc_modeU10", regulation1)
		set.AddBool("hvdc_modeU20", regulation2)
		set.AddReference("hvdc_Q1Ref0Pu", "targetQ_pu", side1)
		set.AddReference("hvdc_Q2Ref0Pu", "targetQ_pu", side2)
		set.AddReference("hvdc_U1Ref0Pu", "targetV_pu", side1)
		set.AddReference("hvdc_U2Ref0Pu", "targetV_pu", side2)
	}

	if def.HasRpcl2() {
		if !hasSetting {
			return nil, fmt.Errorf("hvdc line %s: no setting for the reactive power control loop", def.ID)
		}
		for _, name := range rpcl2Parameters {
			value, ok := setting[name]
			if !ok {
				return nil, fmt.Errorf("hvdc line %s: parameter %s missing from setting", def.ID, name)
			}
			set.AddDouble(name, value)
		}
		if qNom, ok := setting["hvdc_QNom"]; ok {
			addIfMissing(set, "hvdc_Q1Nom", qNom)
			addIfMissing(set, "hvdc_Q2Nom", qNom)
		}
		if lambda, ok := setting["hvdc_LambdaPu"]; ok {
			addIfMissing(set, "hvdc_Lambda1Pu", lambda)
			addIfMissing(set, "hvdc_Lambda2Pu", lambda)
		}
	}
	if !def.HasDiagramModel() && def.ConverterType == network.VSC {
		addIfMissing(set, "hvdc_Q1Nom", qNomDefault)
		addIfMissing(set, "hvdc_Lambda1Pu", 0)
		addIfMissing(set, "hvdc_Q2Nom", qNomDefault)
		addIfMissing(set, "hvdc_Lambda2Pu", 0)
	}

	if def.ConverterType == network.LCC {
		set.AddReference("hvdc_CosPhi1Ref0", "powerFactor", side1)
		set.AddReference("hvdc_CosPhi2Ref0", "powerFactor", side2)
	}

	if def.HasPQPropModel() {
		set.AddReference("hvdc_QPercent1", "qMax_pu", side1)
		if def.Position == algo.BothInMainComponent {
			set.AddReference("hvdc_QPercent2", "qMax_pu", def.Converter2ID)
		}
	}
	if !def.HasDanglingModel() && !def.HasEmulationModel() {
		set.AddReference("P1Ref_ValueIn", "p1_pu", "")
	}
	if def.HasEmulationModel() {
		if def.Droop == nil || def.P0 == nil {
			return nil, fmt.Errorf("hvdc line %s: %w", def.ID, algo.ErrMissingEmulationData)
		}
		set.AddDouble("acemulation_tFilter", acEmulationTFilter)
		set.AddDouble("acemulation_KACEmulation", ComputeKAC(*def.Droop))
		set.AddDouble("acemulation_PRefSet0Pu", ComputePSet(*def.P0))
	}
	return set, nil
}

// flatStartingPoint computes the initial flows from the DC set point and losses.
func (p HVDCParams) flatStartingPoint(set *ParametersSet, def algo.HVDCDefinition, swapped bool, side1, side2 string) {
	set.AddDouble("hvdc_U10Pu", 1.)
	set.AddDouble("hvdc_UPhase10", 0.)
	set.AddDouble("hvdc_U20Pu", 1.)
	set.AddDouble("hvdc_UPhase20", 0.)

	pSetPoint := -def.PSetPoint
	pdcLoss := def.Rdc * (pSetPoint / def.VdcNom) * (pSetPoint / def.VdcNom) / pu
	p0dc := pSetPoint / pu

	var p01, p02 float64
	if !swapped {
		factor := 1.
		if !def.IsConverter1Rectifier {
			factor = -1.
		}
		p01 = -factor * p0dc
		p02 = factor * ((p0dc * (1 - def.LossFactors[0])) - pdcLoss) * (1 - def.LossFactors[1])
	} else {
		factor := 1.
		if def.IsConverter1Rectifier {
			factor = -1.
		}
		p01 = factor * ((p0dc * (1 - def.LossFactors[1])) - pdcLoss) * (1 - def.LossFactors[0])
		p02 = -factor * p0dc
	}
	set.AddDouble("hvdc_P10Pu", p01)
	set.AddDouble("hvdc_P1RefSetPu", p01)
	set.AddDouble("hvdc_P20Pu", p02)

	switch def.ConverterType {
	case network.VSC:
		set.AddReference("hvdc_Q10Pu", "targetQ_pu", side1)
		set.AddReference("hvdc_Q20Pu", "targetQ_pu", side2)
	case network.LCC:
		set.AddDouble("hvdc_Q10Pu", -math.Abs(def.PowerFactors[0]*p01))
		set.AddDouble("hvdc_Q20Pu", -math.Abs(def.PowerFactors[1]*p02))
	}
}

// diagramParams references the diagram tables of converterID, converter
// number converterNumber of the line, as injection n of the model.
func (p HVDCParams) diagramParams(set *ParametersSet, def algo.HVDCDefinition, setting map[string]float64,
	converterID string, converterNumber, n int) {
	file := joinURL(p.diagramDir, DiagramFilename(converterID))
	id := UUID(converterID)
	set.AddString(fmt.Sprintf("hvdc_QInj%dMinTableFile", n), file)
	set.AddString(fmt.Sprintf("hvdc_QInj%dMinTableName", n), id+DiagramMinTableSuffix)
	set.AddString(fmt.Sprintf("hvdc_QInj%dMaxTableFile", n), file)
	set.AddString(fmt.Sprintf("hvdc_QInj%dMaxTableName", n), id+DiagramMaxTableSuffix)

	if def.ConverterType == network.LCC {
		qMax := ComputeQmax(def.PowerFactors[converterNumber-1], def.PMax)
		set.AddDouble(fmt.Sprintf("hvdc_QInj%dMin0Pu", n), (-qMax-1)/pu)
		set.AddDouble(fmt.Sprintf("hvdc_QInj%dMax0Pu", n), (qMax+1)/pu)
		return
	}

	vsc := def.VSCDefinition1
	if converterID != def.Converter1ID {
		vsc = def.VSCDefinition2
	}
	if vsc == nil {
		log.Printf("[HVDC] line %s: no reactive description of converter %s", def.ID, converterID)
		return
	}
	set.AddDouble(fmt.Sprintf("hvdc_QInj%dMin0Pu", n), (vsc.QMin-1)/pu)
	set.AddDouble(fmt.Sprintf("hvdc_QInj%dMax0Pu", n), (vsc.QMax+1)/pu)

	qNom, lambda := fmt.Sprintf("hvdc_Q%dNom", n), fmt.Sprintf("hvdc_Lambda%dPu", n)
	if def.HasRpcl2() {
		if v, ok := setting["hvdc_QNom"]; ok {
			set.AddDouble(qNom, v)
		}
		if v, ok := setting["hvdc_LambdaPu"]; ok {
			set.AddDouble(lambda, v)
		}
	}
	addIfMissing(set, qNom, math.Max(math.Abs(vsc.QMin), math.Abs(vsc.QMax)))
	addIfMissing(set, lambda, 0)
}

func (p HVDCParams) setting(def algo.HVDCDefinition) (map[string]float64, bool) {
	if p.settings == nil {
		return nil, false
	}
	return p.settings.SettingForHvdcLine(def.ID)
}

func addIfMissing(set *ParametersSet, name string, value float64) {
	if !set.HasParameter(name) {
		set.AddDouble(name, value)
	}
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
