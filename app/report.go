package app

import (
	"time"

	"abalone/domain/core"
	"abalone/domain/dataset"
	"abalone/domain/run"
	"abalone/internal/config"
	"abalone/internal/correlation"
	"abalone/internal/hypothesis"
	"abalone/internal/intercept"
	"abalone/internal/regression"
	"abalone/internal/resample"
	"abalone/internal/selection"
)

// Subsets of the data a correlation is estimated on
const (
	SubsetAll      = "all"
	SubsetFiltered = "outliers_removed"
)

// Report holds every number produced by one analysis run
type Report struct {
	RunID       core.RunID            `json:"run_id"`
	Manifest    *run.Manifest         `json:"manifest"`
	Source      string                `json:"source,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
	Duration    time.Duration         `json:"duration"`
	Config      config.AnalysisConfig `json:"config"`
	Records     int                   `json:"records"`
	Outliers    OutlierSummary        `json:"outliers"`

	Correlations []CorrelationResult     `json:"correlations"`
	Tests        []hypothesis.TestResult `json:"tests"`
	Selection    *SelectionResult        `json:"selection,omitempty"`
	Intercepts   []InterceptResult       `json:"intercepts"`
	Failures     []StageFailure          `json:"failures,omitempty"`
}

// OutlierSummary describes the outlier screen applied before the filtered
// correlation estimates.
type OutlierSummary struct {
	Fences  dataset.Fences `json:"fences"`
	Kept    int            `json:"kept"`
	Removed int            `json:"removed"`
}

// CorrelationResult is one estimator on one subset, with its uncertainty
type CorrelationResult struct {
	Subset      string             `json:"subset"`
	X           core.VariableKey   `json:"x"`
	Y           core.VariableKey   `json:"y"`
	Method      correlation.Method `json:"method"`
	Records     int                `json:"records"`
	Estimate    float64            `json:"estimate"`
	JackknifeSE float64            `json:"jackknife_se"`
	BootstrapSE resample.SEResult  `json:"bootstrap_se"`
	TInterval   resample.TInterval `json:"t_interval"`
}

// SelectionResult is the outcome of backward elimination
type SelectionResult struct {
	Family     regression.Family  `json:"family"`
	Outcome    core.VariableKey   `json:"outcome"`
	Candidates []core.VariableKey `json:"candidates"`
	selection.Result
}

// InterceptResult is one intercept bootstrap, summarized
type InterceptResult struct {
	intercept.Summary
	Predictors []core.VariableKey `json:"predictors"`

	// Values is the raw distribution, kept for histograms.
	Values []float64 `json:"-"`
}

// Correlation returns the result for subset and method, if present.
func (r *Report) Correlation(subset string, method correlation.Method) (CorrelationResult, bool) {
	for _, c := range r.Correlations {
		if c.Subset == subset && c.Method == method {
			return c, true
		}
	}
	return CorrelationResult{}, false
}
