package sink

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

// Manifest collects BLAKE3-256 digests of written files, keyed by their
// slash-separated path relative to the output directory.
//
// Manifest is safe for concurrent use.
type Manifest struct {
	mu   sync.Mutex
	sums map[string][32]byte
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{sums: make(map[string][32]byte)}
}

// Add records the digest of data under name, replacing any earlier entry.
func (m *Manifest) Add(name string, data []byte) {
	sum := blake3.Sum256(data)
	m.mu.Lock()
	m.sums[name] = sum
	m.mu.Unlock()
}

// Sum returns the hex digest recorded for name.
func (m *Manifest) Sum(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, ok := m.sums[name]
	if !ok {
		return "", false
	}
	return hex.EncodeToString(sum[:]), true
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sums)
}

// WriteTo writes one "<hex>  <path>" line per entry, sorted by path.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	m.mu.Lock()
	names := make([]string, 0, len(m.sums))
	for name := range m.sums {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		sum := m.sums[name]
		fmt.Fprintf(&b, "%s  %s\n", hex.EncodeToString(sum[:]), name)
	}
	m.mu.Unlock()

	n, err := io.WriteString(w, b.String())
	if err != nil {
		return int64(n), fmt.Errorf("failed to write manifest: %w", err)
	}
	return int64(n), nil
}
