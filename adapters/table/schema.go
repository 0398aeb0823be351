package table

import (
	"fmt"
	"strconv"
	"strings"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/internal/errors"
)

// headerAliases maps the long UCI column names onto dataset keys.
var headerAliases = map[string]core.VariableKey{
	"whole_weight":   dataset.Whole,
	"shucked_weight": dataset.Shucked,
	"viscera_weight": dataset.Viscera,
	"shell_weight":   dataset.Shell,
}

// NormalizeHeader lowercases a header cell, turns inner spaces into
// underscores and resolves known aliases.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Join(strings.Fields(h), "_")
	if key, ok := headerAliases[h]; ok {
		return string(key)
	}
	return h
}

// ToAbalone converts a raw table into a dataset over the abalone schema.
// Rings and unknown columns are dropped. When infant is missing it is
// derived from a sex column (1 for I, 0 for M or F).
func ToAbalone(raw *RawTable) (*dataset.Dataset, error) {
	index := make(map[core.VariableKey]int, len(raw.Headers))
	for i, h := range raw.Headers {
		if h == "" {
			continue
		}
		key := core.VariableKey(h)
		if _, dup := index[key]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q appears more than once", h))
		}
		index[key] = i
	}

	_, hasInfant := index[dataset.Infant]
	sexCol, hasSex := index[dataset.Sex]

	var missing []string
	for _, key := range dataset.Measurements() {
		if _, ok := index[key]; !ok {
			missing = append(missing, string(key))
		}
	}
	if !hasInfant && !hasSex {
		missing = append(missing, string(dataset.Infant))
	}
	if len(missing) > 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	schema := dataset.AbaloneSchema()
	columns := make(map[core.VariableKey][]float64, len(schema))
	for _, key := range schema {
		columns[key] = make([]float64, len(raw.Rows))
	}

	for r, row := range raw.Rows {
		line := r + 2 // 1-based, after the header
		for _, key := range dataset.Measurements() {
			v, err := cell(row, index[key], line, key)
			if err != nil {
				return nil, err
			}
			columns[key][r] = v
		}

		var infant float64
		if hasInfant {
			v, err := cell(row, index[dataset.Infant], line, dataset.Infant)
			if err != nil {
				return nil, err
			}
			if v != 0 && v != 1 {
				return nil, errors.InvalidInput(fmt.Sprintf("row %d: infant must be 0 or 1, got %v", line, v))
			}
			infant = v
		} else {
			v, err := infantFromSex(row, sexCol, line)
			if err != nil {
				return nil, err
			}
			infant = v
		}
		columns[dataset.Infant][r] = infant
	}

	return dataset.New(schema, columns)
}

func cell(row []string, col, line int, key core.VariableKey) (float64, error) {
	if col >= len(row) {
		return 0, errors.InvalidInput(fmt.Sprintf("row %d: missing value for %s", line, key))
	}
	raw := strings.TrimSpace(row[col])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("row %d: %s value %q is not a number", line, key, raw))
	}
	return v, nil
}

func infantFromSex(row []string, col, line int) (float64, error) {
	if col >= len(row) {
		return 0, errors.InvalidInput(fmt.Sprintf("row %d: missing value for sex", line))
	}
	switch strings.ToUpper(strings.TrimSpace(row[col])) {
	case "I":
		return 1, nil
	case "M", "F":
		return 0, nil
	}
	return 0, errors.InvalidInput(fmt.Sprintf("row %d: sex must be M, F or I, got %q", line, row[col]))
}
