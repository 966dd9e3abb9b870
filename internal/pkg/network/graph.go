package network

import (
	"errors"
	"fmt"
)

// Graph is the bus adjacency list built while reading a network document.
type Graph struct {
	nodes          map[string]*Node
	order          []string
	adjacentcyList map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:          make(map[string]*Node),
		order:          make([]string, 0),
		adjacentcyList: make(map[string][]string),
	}
}

// AddNode inserts n. Bus ids are unique across the whole network.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		err := fmt.Sprintf("node %s already exists in graph.", n.ID)
		return errors.New(err)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	g.adjacentcyList[n.ID] = make([]string, 0)
	return nil
}

// AddEdge links two existing nodes in both directions. Self loops are ignored.
func (g *Graph) AddEdge(id1, id2 string) error {
	if _, exists := g.nodes[id1]; !exists {
		err := fmt.Sprintf("start node %s does not exist in graph.", id1)
		return errors.New(err)
	}
	if _, exists := g.nodes[id2]; !exists {
		err := fmt.Sprintf("end node %s does not exist in graph.", id2)
		return errors.New(err)
	}
	if id1 == id2 {
		return nil
	}
	g.adjacentcyList[id1] = append(g.adjacentcyList[id1], id2)
	g.adjacentcyList[id2] = append(g.adjacentcyList[id2], id1)
	return nil
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edges returns the ids adjacent to id, duplicates included.
func (g *Graph) Edges(id string) []string {
	if edges, exists := g.adjacentcyList[id]; exists {
		return edges
	}
	return make([]string, 0)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// linkNeighbours copies the adjacency list into each node's Neighbours,
// keeping one entry per distinct neighbour.
func (g *Graph) linkNeighbours() {
	for _, id := range g.order {
		n := g.nodes[id]
		seen := make(map[string]bool)
		n.Neighbours = n.Neighbours[:0]
		for _, other := range g.adjacentcyList[id] {
			if seen[other] {
				continue
			}
			seen[other] = true
			n.Neighbours = append(n.Neighbours, g.nodes[other])
		}
	}
}
