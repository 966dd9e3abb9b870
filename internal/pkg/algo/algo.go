/*
algo.go Node algorithms and the driver applying them over the main connected component.
*/

package algo

import (
	"log"

	"github.com/ohowland/dfl_launcher/internal/pkg/network"
)

// NodeAlgorithm is applied once on each node of the main connected component.
type NodeAlgorithm interface {
	Apply(node *network.Node) error
}

// NodeAlgorithmFunc adapts a function to a NodeAlgorithm.
type NodeAlgorithmFunc func(node *network.Node) error

// Apply calls f(node).
func (f NodeAlgorithmFunc) Apply(node *network.Node) error {
	return f(node)
}

// Driver runs a list of algorithms over a list of nodes.
type Driver struct {
	algorithms []NodeAlgorithm
}

// NewDriver returns a driver applying algorithms in the given order.
func NewDriver(algorithms ...NodeAlgorithm) Driver {
	return Driver{algorithms: algorithms}
}

// Run applies every algorithm on every node, node by node. It stops at the first error.
func (d Driver) Run(nodes []*network.Node) error {
	for _, node := range nodes {
		for _, a := range d.algorithms {
			if err := a.Apply(node); err != nil {
				return err
			}
		}
	}
	log.Printf("[Algo] %d algorithms applied on %d nodes", len(d.algorithms), len(nodes))
	return nil
}
