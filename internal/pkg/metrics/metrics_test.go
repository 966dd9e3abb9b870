package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
)

func TestRecordModels(t *testing.T) {
	r := NewRegistry()

	r.RecordHVDC(algo.HVDCLineDefinitions{Lines: map[string]algo.HVDCDefinition{
		"A": {ID: "A", Model: algo.HvdcPV, Position: algo.BothInMainComponent},
		"B": {ID: "B", Model: algo.HvdcPV, Position: algo.BothInMainComponent},
		"C": {ID: "C", Model: algo.HvdcPTanPhiDangling, Position: algo.FirstInMainComponent},
	}})
	r.RecordGenerators([]algo.GeneratorDefinition{
		{ID: "G1", Model: algo.GeneratorNetwork},
		{ID: "G2", Model: algo.SignalNInfinite},
		{ID: "G3", Model: algo.SignalNInfinite},
	})
	r.RecordSVarCs([]algo.SVarCDefinition{{ID: "S", Model: algo.SVarCPVProp}})
	r.RecordLoads([]algo.LoadDefinition{{ID: "L", Model: algo.LoadRestorativeWithLimits}})

	assert.Equal(t, testutil.ToFloat64(r.HVDCModelsTotal.WithLabelValues("HvdcPV", "BOTH_IN_MAIN_COMPONENT")), 2.)
	assert.Equal(t, testutil.ToFloat64(r.HVDCModelsTotal.WithLabelValues("HvdcPTanPhiDangling", "FIRST_IN_MAIN_COMPONENT")), 1.)
	assert.Equal(t, testutil.ToFloat64(r.GeneratorModelsTotal.WithLabelValues("SIGNALN_INFINITE")), 2.)
	assert.Equal(t, testutil.ToFloat64(r.SVarCModelsTotal.WithLabelValues("SVARCPVPROP")), 1.)
	assert.Equal(t, testutil.ToFloat64(r.LoadModelsTotal.WithLabelValues("LOADRESTORATIVEWITHLIMITS")), 1.)
	assert.Equal(t, testutil.CollectAndCount(r.GeneratorModelsTotal), 2)
}

func TestWriteToTextfile(t *testing.T) {
	r := NewRegistry()
	r.NodesTotal.Set(12)
	r.RecordStep("hvdc", 1500*time.Millisecond)
	r.FilesWritten.Add(3)

	path := filepath.Join(t.TempDir(), "dfl.prom")
	assert.NilError(t, r.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	content := string(data)
	assert.Assert(t, strings.Contains(content, "dfl_nodes_total 12"))
	assert.Assert(t, strings.Contains(content, `dfl_step_duration_seconds{step="hvdc"} 1.5`))
	assert.Assert(t, strings.Contains(content, "dfl_files_written_total 3"))
}

func TestRegistriesAreIndependent(t *testing.T) {
	r1 := NewRegistry()
	r2 := NewRegistry()
	r1.FilesWritten.Inc()
	assert.Equal(t, testutil.ToFloat64(r1.FilesWritten), 1.)
	assert.Equal(t, testutil.ToFloat64(r2.FilesWritten), 0.)
}
