// Package table reads abalone measurement tables from whitespace-delimited,
// CSV or Excel files into datasets.
package table

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"abalone/domain/dataset"
	"abalone/internal/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DataReader reads whitespace, CSV and Excel tables
type DataReader struct {
	logger *zap.Logger
}

// NewDataReader creates a reader. A nil logger discards log output.
func NewDataReader(logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataReader{logger: logger.Named("table")}
}

// DetectFileType picks the layout from the file extension; anything that is
// not .csv or .xlsx is treated as whitespace-delimited text.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".xlsx":
		return XLSX
	}
	return Whitespace
}

// ReadDataset loads path and converts it to an abalone dataset.
func (r *DataReader) ReadDataset(ctx context.Context, path string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := r.ReadRaw(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := ToAbalone(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "convert %s", path)
	}

	r.logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("records", d.Len()),
		zap.Int("columns", len(d.Keys())),
	)
	return d, nil
}

// ReadRaw reads the header and cells of path without interpreting them.
func (r *DataReader) ReadRaw(path string) (*RawTable, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("table file not found: %s", path))
	}

	fileType := DetectFileType(path)
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch fileType {
	case CSV:
		rows, err = readCSV(path)
	case XLSX:
		rows, err = readExcel(path)
	default:
		rows, err = readWhitespace(path)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("table read",
		zap.String("type", string(fileType)),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", path))
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}
	return &RawTable{Headers: headers, Rows: rows[1:]}, nil
}

// readExcel reads the first sheet of a workbook
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("workbook %s has no sheets", path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("read sheet %q: %w", sheets[0], err))
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("read csv: %w", err))
	}
	return rows, nil
}

// readWhitespace splits each non-blank line on runs of spaces or tabs.
func readWhitespace(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	defer file.Close()

	var rows [][]string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("read table: %w", err))
	}
	return rows, nil
}
