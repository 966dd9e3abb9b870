/*
assembling.go Assembling and setting documents. The assembling document associates network
devices with dynamic automatons and properties; the setting document holds the parameter sets of
those associations.
*/

package assembling

import (
	"context"
	"fmt"

	"github.com/ohowland/dfl_launcher/internal/pkg/validation"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

const (
	// SVCModelName is the automaton library of secondary voltage control areas.
	SVCModelName = "SecondaryVoltageControlSimp"
	// Rpcl2PropertyName tags the associations using the RPCL2 control loop.
	Rpcl2PropertyName = "rpcl2"
)

// ConverterSide tells which static converter is wired to side 1 of the dynamic model.
type ConverterSide int

const (
	Side1 ConverterSide = iota + 1
	Side2
)

type HvdcLineRef struct {
	Name string        `yaml:"name" validate:"required"`
	Side ConverterSide `yaml:"side" validate:"oneof=1 2"`
}

type Association struct {
	ID         string       `yaml:"id" validate:"required"`
	Bus        string       `yaml:"bus"`
	Generators []string     `yaml:"generators"`
	HvdcLine   *HvdcLineRef `yaml:"hvdcLine"`
}

type Automaton struct {
	ID            string   `yaml:"id" validate:"required"`
	Lib           string   `yaml:"lib" validate:"required"`
	MacroConnects []string `yaml:"macroConnects"`
}

type Property struct {
	ID      string   `yaml:"id" validate:"required"`
	Devices []string `yaml:"devices"`
}

// Document is the assembling document.
type Document struct {
	Associations []Association `yaml:"associations" validate:"dive"`
	Automatons   []Automaton   `yaml:"automatons" validate:"dive"`
	Properties   []Property    `yaml:"properties" validate:"dive"`
}

type Set struct {
	ID         string             `yaml:"id" validate:"required"`
	Parameters map[string]float64 `yaml:"parameters"`
}

// Setting is the setting document.
type Setting struct {
	Sets []Set `yaml:"sets" validate:"dive"`
}

// Database indexes an assembling document and its setting document.
type Database struct {
	associations map[string]Association
	automatons   []Automaton
	properties   map[string]Property
	sets         map[string]Set
}

// Empty returns a database without any association.
func Empty() *Database {
	db, _ := New(Document{}, Setting{})
	return db
}

// New validates and indexes both documents.
func New(doc Document, setting Setting) (*Database, error) {
	if err := validation.Struct(&doc); err != nil {
		return nil, err
	}
	if err := validation.Struct(&setting); err != nil {
		return nil, err
	}

	db := &Database{
		associations: make(map[string]Association),
		automatons:   doc.Automatons,
		properties:   make(map[string]Property),
		sets:         make(map[string]Set),
	}
	for _, a := range doc.Associations {
		if _, ok := db.associations[a.ID]; ok {
			return nil, fmt.Errorf("association %s declared twice", a.ID)
		}
		db.associations[a.ID] = a
	}
	for _, p := range doc.Properties {
		db.properties[p.ID] = p
	}
	for _, s := range setting.Sets {
		db.sets[s.ID] = s
	}
	return db, nil
}

// Load reads both documents. An empty URL stands for an empty document.
func Load(ctx context.Context, fs afs.Service, assemblingURL, settingURL string) (*Database, error) {
	doc := Document{}
	if err := download(ctx, fs, assemblingURL, &doc); err != nil {
		return nil, err
	}
	setting := Setting{}
	if err := download(ctx, fs, settingURL, &setting); err != nil {
		return nil, err
	}
	return New(doc, setting)
}

func download(ctx context.Context, fs afs.Service, URL string, out interface{}) error {
	if URL == "" {
		return nil
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", URL, err)
	}
	return nil
}

// svcAssociations returns the associations macro-connected to a secondary
// voltage control automaton.
func (db *Database) svcAssociations() []Association {
	out := make([]Association, 0)
	for _, automaton := range db.automatons {
		if automaton.Lib != SVCModelName {
			continue
		}
		for _, id := range automaton.MacroConnects {
			if a, ok := db.associations[id]; ok {
				out = append(out, a)
			}
		}
	}
	return out
}

// HvdcLinesInSVC maps each HVDC line belonging to a secondary voltage control
// area to the converter side wired to side 1 of its dynamic model.
func (db *Database) HvdcLinesInSVC() map[string]ConverterSide {
	out := make(map[string]ConverterSide)
	for _, a := range db.svcAssociations() {
		if a.HvdcLine != nil {
			out[a.HvdcLine.Name] = a.HvdcLine.Side
		}
	}
	return out
}

// Rpcl2Buses returns the buses directly associated with a secondary voltage
// control area.
func (db *Database) Rpcl2Buses() map[string]bool {
	out := make(map[string]bool)
	for _, a := range db.svcAssociations() {
		if a.Bus != "" && a.HvdcLine == nil {
			out[a.Bus] = true
		}
	}
	return out
}

// GeneratorsInSVC maps each generator of a secondary voltage control area to
// whether it uses the RPCL2 control loop.
func (db *Database) GeneratorsInSVC() map[string]bool {
	out := make(map[string]bool)
	for _, a := range db.svcAssociations() {
		for _, g := range a.Generators {
			out[g] = false
		}
	}
	if p, ok := db.properties[Rpcl2PropertyName]; ok {
		for _, device := range p.Devices {
			for _, g := range db.associations[device].Generators {
				if _, ok := out[g]; ok {
					out[g] = true
				}
			}
		}
	}
	return out
}

// SettingForHvdcLine returns the parameters of the association holding lineID.
func (db *Database) SettingForHvdcLine(lineID string) (map[string]float64, bool) {
	for id, a := range db.associations {
		if a.HvdcLine == nil || a.HvdcLine.Name != lineID {
			continue
		}
		if s, ok := db.sets[id]; ok {
			return s.Parameters, true
		}
	}
	return nil, false
}
