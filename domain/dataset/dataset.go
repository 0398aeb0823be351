package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"abalone/domain/core"
	"abalone/internal/errors"
)

// Dataset is an immutable, column-oriented table of numeric records.
// Every derived view (Select, Without, Project, Filter, WithColumn) is a new
// Dataset; the receiver is never modified.
type Dataset struct {
	keys    []core.VariableKey
	columns map[core.VariableKey][]float64
	rows    int
}

// New builds a dataset from named columns in the given key order.
// Columns are copied, so later writes to the input slices do not leak in.
func New(keys []core.VariableKey, columns map[core.VariableKey][]float64) (*Dataset, error) {
	if len(keys) == 0 {
		return nil, errors.InvalidInput("dataset requires at least one column")
	}

	d := &Dataset{
		keys:    make([]core.VariableKey, 0, len(keys)),
		columns: make(map[core.VariableKey][]float64, len(keys)),
		rows:    -1,
	}

	for _, key := range keys {
		if _, dup := d.columns[key]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate column %q", key))
		}
		values, ok := columns[key]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("missing column %q", key))
		}
		if d.rows >= 0 && len(values) != d.rows {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q has %d rows, expected %d", key, len(values), d.rows))
		}
		d.rows = len(values)

		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.InvalidInput(fmt.Sprintf("column %q row %d is not a finite number", key, i))
			}
		}

		copied := make([]float64, len(values))
		copy(copied, values)
		d.keys = append(d.keys, key)
		d.columns[key] = copied
	}

	return d, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return d.rows
}

// Keys returns the column keys in table order.
func (d *Dataset) Keys() []core.VariableKey {
	out := make([]core.VariableKey, len(d.keys))
	copy(out, d.keys)
	return out
}

// Has reports whether the dataset contains key.
func (d *Dataset) Has(key core.VariableKey) bool {
	_, ok := d.columns[key]
	return ok
}

// Column returns a read-only view of a column. Callers must not modify it.
func (d *Dataset) Column(key core.VariableKey) ([]float64, error) {
	values, ok := d.columns[key]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown column %q", key))
	}
	return values, nil
}

// Value returns a single cell.
func (d *Dataset) Value(row int, key core.VariableKey) float64 {
	return d.columns[key][row]
}

// Select returns the records at indices, in order. Indices may repeat,
// which is how case resampling draws with replacement.
func (d *Dataset) Select(indices []int) *Dataset {
	out := d.empty(len(indices))
	for _, key := range d.keys {
		src := d.columns[key]
		dst := make([]float64, len(indices))
		for i, idx := range indices {
			dst[i] = src[idx]
		}
		out.columns[key] = dst
	}
	return out
}

// Without returns the dataset with record i removed.
func (d *Dataset) Without(i int) *Dataset {
	out := d.empty(d.rows - 1)
	for _, key := range d.keys {
		src := d.columns[key]
		dst := make([]float64, 0, d.rows-1)
		dst = append(dst, src[:i]...)
		dst = append(dst, src[i+1:]...)
		out.columns[key] = dst
	}
	return out
}

// Filter returns the records for which keep returns true.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	indices := make([]int, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return d.Select(indices)
}

// Project returns a dataset restricted to keys, in the given order.
// Columns are shared with the receiver, which is safe because neither side
// ever writes to them.
func (d *Dataset) Project(keys ...core.VariableKey) (*Dataset, error) {
	out := &Dataset{
		keys:    make([]core.VariableKey, 0, len(keys)),
		columns: make(map[core.VariableKey][]float64, len(keys)),
		rows:    d.rows,
	}
	for _, key := range keys {
		values, ok := d.columns[key]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown column %q", key))
		}
		if _, dup := out.columns[key]; dup {
			continue
		}
		out.keys = append(out.keys, key)
		out.columns[key] = values
	}
	return out, nil
}

// Drop returns the dataset without the named columns. Unknown keys are ignored.
func (d *Dataset) Drop(keys ...core.VariableKey) *Dataset {
	dropped := make(map[core.VariableKey]bool, len(keys))
	for _, key := range keys {
		dropped[key] = true
	}

	kept := make([]core.VariableKey, 0, len(d.keys))
	for _, key := range d.keys {
		if !dropped[key] {
			kept = append(kept, key)
		}
	}
	out, _ := d.Project(kept...)
	return out
}

// WithColumn returns a dataset whose column key holds values. The column is
// replaced when it exists and appended otherwise.
func (d *Dataset) WithColumn(key core.VariableKey, values []float64) (*Dataset, error) {
	if len(values) != d.rows {
		return nil, errors.InvalidInput(fmt.Sprintf("column %q has %d rows, expected %d", key, len(values), d.rows))
	}

	out := &Dataset{
		keys:    make([]core.VariableKey, len(d.keys), len(d.keys)+1),
		columns: make(map[core.VariableKey][]float64, len(d.columns)+1),
		rows:    d.rows,
	}
	copy(out.keys, d.keys)
	for k, v := range d.columns {
		out.columns[k] = v
	}
	if _, ok := d.columns[key]; !ok {
		out.keys = append(out.keys, key)
	}

	copied := make([]float64, len(values))
	copy(copied, values)
	out.columns[key] = copied
	return out, nil
}

func (d *Dataset) empty(rows int) *Dataset {
	keys := make([]core.VariableKey, len(d.keys))
	copy(keys, d.keys)
	return &Dataset{
		keys:    keys,
		columns: make(map[core.VariableKey][]float64, len(d.keys)),
		rows:    rows,
	}
}

// Fingerprint hashes the column keys and the exact bit patterns of every
// value, in table order. Equal fingerprints mean identical data.
func (d *Dataset) Fingerprint() core.Hash {
	h := sha256.New()
	var buf [8]byte
	for _, key := range d.keys {
		h.Write([]byte(key))
		h.Write([]byte{0})
		for _, v := range d.columns[key] {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return core.Hash(hex.EncodeToString(h.Sum(nil)))
}
