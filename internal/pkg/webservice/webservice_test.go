package webservice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ohowland/dfl_launcher/internal/pkg/algo"
	"github.com/ohowland/dfl_launcher/internal/pkg/metrics"
	"github.com/ohowland/dfl_launcher/internal/pkg/root"
	"gotest.tools/v3/assert"
)

type fakeSource struct {
	results root.Results
	ready   bool
}

func (f fakeSource) Results() (root.Results, bool) {
	return f.results, f.ready
}

func readySource() fakeSource {
	return fakeSource{
		ready: true,
		results: root.Results{
			HVDC: algo.HVDCLineDefinitions{Lines: map[string]algo.HVDCDefinition{
				"HVDC2": {ID: "HVDC2", Model: algo.HvdcPV, Position: algo.BothInMainComponent},
				"HVDC1": {ID: "HVDC1", Model: algo.HvdcPTanPhiDangling, Position: algo.FirstInMainComponent},
			}},
			Generators: []algo.GeneratorDefinition{
				{ID: "G2", Model: algo.GeneratorNetwork},
				{ID: "G1", Model: algo.SignalNInfinite},
			},
			Summary: root.Summary{Nodes: 4, MainComponentNodes: 3, SlackNode: "A"},
		},
	}
}

func get(t *testing.T, source Source, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com"+url, nil)
	NewRouter(source, metrics.NewRegistry().Gatherer()).ServeHTTP(w, r)
	return w
}

func TestBaseGet(t *testing.T) {
	w := get(t, fakeSource{}, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentType, w.Header().Get("Content-Type"), "got expected Content-Type in response")
	assert.Equal(t, w.Body.String(), `{"ready":false}`)

	w = get(t, readySource(), "/")
	assert.Equal(t, w.Body.String(), `{"ready":true}`)
}

func TestNotReady(t *testing.T) {
	for _, url := range []string{"/summary", "/hvdc", "/hvdc/HVDC1", "/generators", "/generators/G1"} {
		w := get(t, fakeSource{}, url)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, url)
		assert.Equal(t, contentType, w.Header().Get("Content-Type"))
	}
}

func TestSummaryGet(t *testing.T) {
	w := get(t, readySource(), "/summary")
	assert.Equal(t, http.StatusOK, w.Code)

	summary := root.Summary{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, summary.Nodes, 4)
	assert.Equal(t, summary.SlackNode, "A")
}

func TestHVDCGet(t *testing.T) {
	w := get(t, readySource(), "/hvdc")
	assert.Equal(t, http.StatusOK, w.Code)
	ids := make([]string, 0)
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.DeepEqual(t, ids, []string{"HVDC1", "HVDC2"})

	w = get(t, readySource(), "/hvdc/HVDC2")
	assert.Equal(t, http.StatusOK, w.Code)
	def := map[string]interface{}{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &def))
	assert.Equal(t, def["id"], "HVDC2")
	assert.Equal(t, def["model"], "HvdcPV")
	assert.Equal(t, def["position"], "BOTH_IN_MAIN_COMPONENT")

	w = get(t, readySource(), "/hvdc/UNKNOWN")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGeneratorsGet(t *testing.T) {
	w := get(t, readySource(), "/generators")
	assert.Equal(t, http.StatusOK, w.Code)
	ids := make([]string, 0)
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.DeepEqual(t, ids, []string{"G2", "G1"})

	w = get(t, readySource(), "/generators/G1")
	assert.Equal(t, http.StatusOK, w.Code)
	def := map[string]interface{}{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &def))
	assert.Equal(t, def["model"], "SIGNALN_INFINITE")

	w = get(t, readySource(), "/generators/G9")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsGet(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.NodesTotal.Set(4)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/metrics", nil)
	NewRouter(readySource(), reg.Gatherer()).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Assert(t, strings.Contains(w.Body.String(), "dfl_nodes_total 4"))
}

func TestPostRejected(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/summary", nil)
	NewRouter(readySource(), nil).ServeHTTP(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
