package algo

import (
	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// ShuntCounterAlgorithm counts the shunts of every voltage level.
type ShuntCounterAlgorithm struct {
	nbShunts map[string]int
}

func NewShuntCounterAlgorithm() *ShuntCounterAlgorithm {
	return &ShuntCounterAlgorithm{nbShunts: make(map[string]int)}
}

// NbShunts returns the shunt count by voltage level id.
func (a *ShuntCounterAlgorithm) NbShunts() map[string]int {
	out := make(map[string]int, len(a.nbShunts))
	for k, v := range a.nbShunts {
		out[k] = v
	}
	return out
}

func (a *ShuntCounterAlgorithm) Apply(node *network.Node) error {
	a.nbShunts[node.VoltageLevelID()] += len(node.Shunts)
	return nil
}
