package network

import (
	"fmt"
	"sort"
)

// SwitchConnector reports the buses directly linked to a bus by a closed switch
// inside the same voltage level.
type SwitchConnector interface {
	BusesConnectedBySwitch(busID, vlID string) ([]string, error)
}

type switchKey struct {
	bus string
	vl  string
}

// SwitchMap is an in-memory SwitchConnector built from closed switches.
type SwitchMap struct {
	adjacency map[switchKey][]string
}

// NewSwitchMap returns an empty switch map.
func NewSwitchMap() *SwitchMap {
	return &SwitchMap{adjacency: make(map[switchKey][]string)}
}

// Add registers a closed switch between busID and otherBusID in voltage level vlID.
func (s *SwitchMap) Add(busID, vlID, otherBusID string) {
	k1 := switchKey{busID, vlID}
	k2 := switchKey{otherBusID, vlID}
	s.adjacency[k1] = append(s.adjacency[k1], otherBusID)
	s.adjacency[k2] = append(s.adjacency[k2], busID)
}

// BusesConnectedBySwitch returns the direct switch neighbours of busID.
func (s *SwitchMap) BusesConnectedBySwitch(busID, vlID string) ([]string, error) {
	neighbours := s.adjacency[switchKey{busID, vlID}]
	out := make([]string, len(neighbours))
	copy(out, neighbours)
	return out, nil
}

// Resolver computes the buses electrically merged with a bus through chains of
// closed switches.
type Resolver struct {
	switches SwitchConnector
}

// NewResolver wraps a SwitchConnector.
func NewResolver(sc SwitchConnector) Resolver {
	return Resolver{switches: sc}
}

// ConnectedBySwitch returns every bus reachable from busID through closed
// switches of voltage level vlID. busID itself is never part of the result.
// The result is sorted.
func (r Resolver) ConnectedBySwitch(busID, vlID string) ([]string, error) {
	if r.switches == nil {
		return []string{}, nil
	}

	visited := map[string]bool{busID: true}
	stack := []string{busID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbours, err := r.switches.BusesConnectedBySwitch(current, vlID)
		if err != nil {
			return nil, fmt.Errorf("switch query on bus %s: %w", current, err)
		}
		for _, id := range neighbours {
			if !visited[id] {
				visited[id] = true
				stack = append(stack, id)
			}
		}
	}

	out := make([]string, 0, len(visited)-1)
	for id := range visited {
		if id != busID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}
