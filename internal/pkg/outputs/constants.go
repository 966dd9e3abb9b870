/*
constants.go Names and conversions shared by the output writers.
*/

package outputs

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

const (
	DiagramDirectorySuffix = "_Diagram"
	DiagramFileSuffix      = "_Diagram.txt"
	DiagramMinTableSuffix  = "_tableqmin"
	DiagramMaxTableSuffix  = "_tableqmax"
	ParFileSuffix          = ".par"
	ManifestFileSuffix     = ".manifest.json"

	// powers are written per unit on a 100 MVA base
	pu = 100.
)

var idReplacer = strings.NewReplacer("/", "_", "\\", "_")

// DiagramFilename is the name of the diagram file of the device id.
func DiagramFilename(id string) string {
	return idReplacer.Replace(id) + DiagramFileSuffix
}

// UUID returns the name-based identifier of id, stable across runs.
func UUID(id string) string {
	return uuid.NewSHA1(uuid.Nil, []byte(id)).String()
}

// ComputeQmax is the reactive limit of an LCC station of the given power factor.
func ComputeQmax(powerFactor, pMax float64) float64 {
	return pMax * math.Sqrt(1/(powerFactor*powerFactor)-1)
}

// ComputeKAC converts an AC emulation droop (MW/deg) into its per unit gain.
func ComputeKAC(droop float64) float64 {
	return droop * 180. / (math.Pi * pu)
}

// ComputePSet converts the AC emulation active power set point into per unit.
func ComputePSet(p0 float64) float64 {
	return p0 / pu
}

func joinURL(base string, elements ...string) string {
	out := strings.TrimRight(base, "/")
	for _, e := range elements {
		out += "/" + strings.Trim(e, "/")
	}
	return out
}
