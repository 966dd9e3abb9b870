package algo

import (
	"sort"

	"github.com/ohowland/dfl_launcher/internal/pkg/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// MainConnexComponent returns the largest group of nodes linked through their
// neighbours. Nodes keep their input order. Among groups of the same size, the
// one holding the earliest node wins.
func MainConnexComponent(nodes []*network.Node) []*network.Node {
	if len(nodes) == 0 {
		return []*network.Node{}
	}

	index := make(map[*network.Node]int64, len(nodes))
	g := simple.NewUndirectedGraph()
	for i, n := range nodes {
		index[n] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for i, n := range nodes {
		for _, neighbour := range n.Neighbours {
			j, ok := index[neighbour]
			if !ok || j == int64(i) {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
		}
	}

	var best []int64
	for _, component := range topo.ConnectedComponents(g) {
		ids := make([]int64, 0, len(component))
		for _, n := range component {
			ids = append(ids, n.ID())
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		if len(ids) > len(best) || (len(ids) == len(best) && ids[0] < best[0]) {
			best = ids
		}
	}

	out := make([]*network.Node, 0, len(best))
	for _, id := range best {
		out = append(out, nodes[id])
	}
	return out
}
