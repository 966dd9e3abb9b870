package assembling

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/viant/afs"
	"gotest.tools/v3/assert"
)

const assemblingYAML = `
associations:
  - id: SVC_HVDC
    hvdcLine: {name: HVDC1, side: 2}
  - id: SVC_GENS
    generators: [G1, G2]
  - id: SVC_RPCL2
    generators: [G3]
  - id: SVC_BUS
    bus: B7
  - id: OTHER
    hvdcLine: {name: HVDC9, side: 1}
automatons:
  - id: SVC_AREA
    lib: SecondaryVoltageControlSimp
    macroConnects: [SVC_HVDC, SVC_GENS, SVC_RPCL2, SVC_BUS]
  - id: UNRELATED
    lib: SomethingElse
    macroConnects: [OTHER]
properties:
  - id: rpcl2
    devices: [SVC_RPCL2]
`

const settingYAML = `
sets:
  - id: SVC_HVDC
    parameters:
      hvdc_QNom: 50
      reactivePowerControlLoop_QrPu: 0.3
`

func loadTestDatabase(t *testing.T) *Database {
	dir := t.TempDir()
	a := filepath.Join(dir, "assembling.yaml")
	s := filepath.Join(dir, "setting.yaml")
	assert.NilError(t, os.WriteFile(a, []byte(assemblingYAML), 0644))
	assert.NilError(t, os.WriteFile(s, []byte(settingYAML), 0644))

	db, err := Load(context.Background(), afs.New(), a, s)
	assert.NilError(t, err)
	return db
}

func TestHvdcLinesInSVC(t *testing.T) {
	db := loadTestDatabase(t)
	lines := db.HvdcLinesInSVC()
	assert.Equal(t, len(lines), 1)
	assert.Equal(t, lines["HVDC1"], Side2)
}

func TestGeneratorsInSVC(t *testing.T) {
	db := loadTestDatabase(t)
	gens := db.GeneratorsInSVC()
	assert.DeepEqual(t, gens, map[string]bool{"G1": false, "G2": false, "G3": true})
}

func TestRpcl2Buses(t *testing.T) {
	db := loadTestDatabase(t)
	assert.DeepEqual(t, db.Rpcl2Buses(), map[string]bool{"B7": true})
}

func TestSettingForHvdcLine(t *testing.T) {
	db := loadTestDatabase(t)
	params, ok := db.SettingForHvdcLine("HVDC1")
	assert.Assert(t, ok)
	assert.Equal(t, params["hvdc_QNom"], 50.0)

	_, ok = db.SettingForHvdcLine("HVDC9")
	assert.Assert(t, !ok)
}

func TestEmptyDatabase(t *testing.T) {
	db := Empty()
	assert.Equal(t, len(db.HvdcLinesInSVC()), 0)
	assert.Equal(t, len(db.GeneratorsInSVC()), 0)
}

func TestRejectInvalidSide(t *testing.T) {
	doc := Document{Associations: []Association{{ID: "A", HvdcLine: &HvdcLineRef{Name: "L", Side: 3}}}}
	_, err := New(doc, Setting{})
	assert.ErrorContains(t, err, "Side")
}
