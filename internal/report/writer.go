package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"abalone/app"
	"abalone/internal/errors"
)

const histogramBins = 40

// Write renders r into dir as report.md, report.html, report.json and one
// histogram PNG per intercept scheme, returning the paths written.
func Write(dir string, r *app.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create report directory %s", dir)
	}

	var written []string
	images := make(map[string]string, len(r.Intercepts))
	for _, ic := range r.Intercepts {
		name := fmt.Sprintf("intercept_%s.png", ic.Method)
		path := filepath.Join(dir, name)
		title := fmt.Sprintf("%s resampling intercepts", ic.Method)
		if err := Histogram(path, title, ic.Values, ic.Interval, histogramBins); err != nil {
			return written, err
		}
		images[string(ic.Method)] = name
		written = append(written, path)
	}

	md := Markdown(r, images)
	mdPath := filepath.Join(dir, "report.md")
	if err := os.WriteFile(mdPath, md, 0o644); err != nil {
		return written, errors.Wrap(err, "write markdown report")
	}
	written = append(written, mdPath)

	htmlPath := filepath.Join(dir, "report.html")
	if err := os.WriteFile(htmlPath, HTML(md, "Abalone resampling analysis"), 0o644); err != nil {
		return written, errors.Wrap(err, "write html report")
	}
	written = append(written, htmlPath)

	summary, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return written, errors.Wrap(err, "encode report")
	}
	jsonPath := filepath.Join(dir, "report.json")
	if err := os.WriteFile(jsonPath, summary, 0o644); err != nil {
		return written, errors.Wrap(err, "write json report")
	}
	written = append(written, jsonPath)

	return written, nil
}
