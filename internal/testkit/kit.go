package testkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"abalone/adapters/rng"
	"abalone/domain/dataset"
	"abalone/ports"
)

// TestKit provides fixtures for end-to-end tests: a random stream factory
// and a scratch directory for generated tables.
type TestKit struct {
	dir string
	rng *rng.PCGAdapter
}

// NewTestKit creates a kit writing its files under dir
func NewTestKit(dir string) *TestKit {
	return &TestKit{dir: dir, rng: rng.NewPCGAdapter()}
}

// RNGAdapter returns the stream factory used by the analysis
func (k *TestKit) RNGAdapter() ports.RNGPort {
	return k.rng
}

// Abalone generates a synthetic abalone table
func (k *TestKit) Abalone(config AbaloneGeneratorConfig) *dataset.Dataset {
	return NewAbaloneGenerator(config).Generate()
}

// WriteTable writes d as a whitespace-delimited table with a header row and
// returns its path.
func (k *TestKit) WriteTable(name string, d *dataset.Dataset) (string, error) {
	var b strings.Builder
	keys := d.Keys()
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(key))
	}
	b.WriteByte('\n')

	for row := 0; row < d.Len(); row++ {
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(d.Value(row, key), 'g', -1, 64))
		}
		b.WriteByte('\n')
	}

	path := filepath.Join(k.dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
