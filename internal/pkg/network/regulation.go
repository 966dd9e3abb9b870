package network

// NbOfRegulating counts the voltage regulators attached to a bus.
type NbOfRegulating int

const (
	None NbOfRegulating = iota
	One
	Multiple
)

func (n NbOfRegulating) String() string {
	switch n {
	case One:
		return "ONE"
	case Multiple:
		return "MULTIPLE"
	default:
		return "NONE"
	}
}

// BusRegulationMap maps a bus id to the number of devices regulating it.
type BusRegulationMap map[string]NbOfRegulating

// Get returns the regulation count of bus, None when the bus is unknown.
func (m BusRegulationMap) Get(busID string) NbOfRegulating {
	if n, ok := m[busID]; ok {
		return n
	}
	return None
}

// mark registers one more regulator on every bus given.
func (m BusRegulationMap) mark(busIDs ...string) {
	for _, id := range busIDs {
		if _, ok := m[id]; ok {
			m[id] = Multiple
		} else {
			m[id] = One
		}
	}
}
