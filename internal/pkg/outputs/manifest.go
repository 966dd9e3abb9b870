package outputs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash fingerprints data with highwayhash-64.
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

type ManifestEntry struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
	Hash string `json:"hash"`
}

// Manifest records every file written during a run. It is safe for concurrent use.
type Manifest struct {
	mux     *sync.Mutex
	entries []ManifestEntry
}

func NewManifest() *Manifest {
	return &Manifest{mux: &sync.Mutex{}, entries: make([]ManifestEntry, 0)}
}

// Add fingerprints data and records it under URL.
func (m *Manifest) Add(URL string, data []byte) error {
	sum, err := Hash(data)
	if err != nil {
		return err
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.entries = append(m.entries, ManifestEntry{URL: URL, Size: len(data), Hash: fmt.Sprintf("%016x", sum)})
	return nil
}

// Entries returns a copy of the recorded entries, in write order.
func (m *Manifest) Entries() []ManifestEntry {
	m.mux.Lock()
	defer m.mux.Unlock()
	out := make([]ManifestEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MarshalJSON encodes the entries as a JSON array.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}
