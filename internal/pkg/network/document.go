package network

// Document is the JSON description of a static network.
type Document struct {
	VoltageLevels []VoltageLevelDoc `json:"VoltageLevels" validate:"required,min=1,dive"`
	Lines         []BranchDoc       `json:"Lines" validate:"dive"`
	Transformers  []TransformerDoc  `json:"Transformers" validate:"dive"`
	HvdcLines     []HvdcLineDoc     `json:"HvdcLines" validate:"dive"`
}

type VoltageLevelDoc struct {
	ID       string      `json:"ID" validate:"required"`
	Buses    []BusDoc    `json:"Buses" validate:"dive"`
	Switches []SwitchDoc `json:"Switches" validate:"dive"`
}

type BusDoc struct {
	ID             string                 `json:"ID" validate:"required"`
	NominalVoltage float64                `json:"NominalVoltage" validate:"gte=0"`
	Fictitious     bool                   `json:"Fictitious"`
	Shunts         []Shunt                `json:"Shunts"`
	Loads          []Load                 `json:"Loads"`
	Generators     []Generator            `json:"Generators"`
	SVarCs         []StaticVarCompensator `json:"SVarCs"`
}

type SwitchDoc struct {
	ID   string `json:"ID" validate:"required"`
	Bus1 string `json:"Bus1" validate:"required"`
	Bus2 string `json:"Bus2" validate:"required"`
	Open bool   `json:"Open"`
}

// BranchDoc describes a line. Open1 and Open2 disconnect one side.
type BranchDoc struct {
	ID    string `json:"ID" validate:"required"`
	Bus1  string `json:"Bus1" validate:"required"`
	Bus2  string `json:"Bus2" validate:"required"`
	Open1 bool   `json:"Open1"`
	Open2 bool   `json:"Open2"`
}

type TransformerDoc struct {
	ID    string   `json:"ID" validate:"required"`
	Buses []string `json:"Buses" validate:"min=2,max=3,dive,required"`
	Open  []bool   `json:"Open"`
}

type ConverterDoc struct {
	ID                  string               `json:"ID" validate:"required"`
	BusID               string               `json:"BusID" validate:"required"`
	VoltageRegulationOn bool                 `json:"VoltageRegulationOn"`
	QMax                float64              `json:"QMax"`
	QMin                float64              `json:"QMin"`
	Q                   float64              `json:"Q"`
	Points              []ReactiveCurvePoint `json:"Points"`
	PowerFactor         float64              `json:"PowerFactor"`
}

type HvdcLineDoc struct {
	ID                    string              `json:"ID" validate:"required"`
	ConverterType         string              `json:"ConverterType" validate:"required,oneof=LCC VSC"`
	Converter1            ConverterDoc        `json:"Converter1"`
	Converter2            ConverterDoc        `json:"Converter2"`
	ActivePowerControl    *ActivePowerControl `json:"ActivePowerControl"`
	PMax                  float64             `json:"PMax"`
	IsConverter1Rectifier bool                `json:"IsConverter1Rectifier"`
	VdcNom                float64             `json:"VdcNom"`
	PSetPoint             float64             `json:"PSetPoint"`
	Rdc                   float64             `json:"Rdc"`
	LossFactors           [2]float64          `json:"LossFactors"`
}

func (d ConverterDoc) build(t ConverterType) *Converter {
	if t == VSC {
		return NewVSCConverter(d.ID, d.BusID, d.VoltageRegulationOn, d.QMax, d.QMin, d.Q, d.Points)
	}
	return NewLCCConverter(d.ID, d.BusID, d.PowerFactor)
}
