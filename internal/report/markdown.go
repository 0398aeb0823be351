// Package report renders an analysis report as Markdown, HTML and
// histogram images.
package report

import (
	"fmt"
	"strings"
	"time"

	"abalone/app"
	"abalone/domain/core"
)

// Markdown renders r with every number at four decimal places. images maps
// an intercept scheme to a histogram file to embed, and may be nil.
func Markdown(r *app.Report, images map[string]string) []byte {
	var b strings.Builder
	level := pct(r.Config.ConfidenceLevel)

	b.WriteString("# Abalone shell resampling analysis\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	if r.Source != "" {
		fmt.Fprintf(&b, "- Source: `%s`\n", r.Source)
	}
	fmt.Fprintf(&b, "- Records: %d\n", r.Records)
	fmt.Fprintf(&b, "- Seed: %d\n", r.Config.Seed)
	if r.Manifest != nil {
		fmt.Fprintf(&b, "- Fingerprint: `%s` (data `%s`)\n",
			r.Manifest.Fingerprint.Fingerprint.Short(), r.Manifest.Fingerprint.DataHash.Short())
	}
	fmt.Fprintf(&b, "- Generated: %s (%s)\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.Duration.Round(time.Millisecond))

	b.WriteString("## Outlier screen\n\n")
	o := r.Outliers
	fmt.Fprintf(&b, "Tukey fences on `%s` (multiplier %.4f): [%.4f, %.4f], quartiles %.4f and %.4f. ",
		o.Fences.Key, r.Config.OutlierIQRMultiplier, o.Fences.Lower, o.Fences.Upper, o.Fences.Q25, o.Fences.Q75)
	fmt.Fprintf(&b, "%d records kept, %d removed.\n\n", o.Kept, o.Removed)

	if len(r.Correlations) > 0 {
		c0 := r.Correlations[0]
		fmt.Fprintf(&b, "## Correlation of %s and %s\n\n", c0.X, c0.Y)
		fmt.Fprintf(&b, "| Subset | Method | n | Estimate | Jackknife SE | Bootstrap SE | %s bootstrap-t CI | Excluded |\n", level)
		b.WriteString("|---|---|---:|---:|---:|---:|---|---:|\n")
		for _, c := range r.Correlations {
			swapped := ""
			if c.TInterval.Swapped {
				swapped = " (swapped)"
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %.4f | %.4f | %.4f | [%.4f, %.4f]%s | %d |\n",
				c.Subset, c.Method, c.Records, c.Estimate, c.JackknifeSE, c.BootstrapSE.SE,
				c.TInterval.Interval.Lower, c.TInterval.Interval.Upper, swapped,
				c.BootstrapSE.Excluded+c.TInterval.Excluded)
		}
		b.WriteString("\n")
	}

	if len(r.Tests) > 0 {
		b.WriteString("## Parametric bootstrap coefficient tests\n\n")
		b.WriteString("| Tested | Coefficient | T_obs | p-value | Used | Excluded | Exclusion rate |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
		for _, t := range r.Tests {
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %d | %d | %.4f |\n",
				t.Tested, t.Coefficient, t.Observed, t.PValue, t.Used, t.Excluded, t.ExclusionRate)
		}
		b.WriteString("\n")
	}

	if s := r.Selection; s != nil {
		b.WriteString("## Backward stepwise selection\n\n")
		fmt.Fprintf(&b, "%s model of `%s`, %d-fold cross-validated R², tolerance %.4f.\n\n",
			s.Family, s.Outcome, r.Config.CVFolds, r.Config.SelectionTolerance)
		fmt.Fprintf(&b, "Starting from %s: CV R² = %.4f.\n\n", keyList(s.Candidates), s.InitialScore)
		if len(s.Steps) > 0 {
			b.WriteString("| Step | Removed | CV R² | Remaining |\n")
			b.WriteString("|---:|---|---:|---|\n")
			for i, st := range s.Steps {
				fmt.Fprintf(&b, "| %d | %s | %.4f | %s |\n", i+1, st.Removed, st.Score, keyList(st.Predictors))
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Selected %s with CV R² = %.4f.", keyList(s.Predictors), s.Score)
		if s.Skipped > 0 {
			fmt.Fprintf(&b, " %d candidate sets were skipped because a fit did not converge.", s.Skipped)
		}
		b.WriteString("\n\n")
	}

	if len(r.Intercepts) > 0 {
		b.WriteString("## Intercept bootstrap\n\n")
		fmt.Fprintf(&b, "| Scheme | Estimate | %s percentile CI | SD | Mean | Used | Excluded |\n", level)
		b.WriteString("|---|---:|---|---:|---:|---:|---:|\n")
		for _, ic := range r.Intercepts {
			fmt.Fprintf(&b, "| %s | %.4f | [%.4f, %.4f] | %.4f | %.4f | %d | %d |\n",
				ic.Method, ic.Estimate, ic.Interval.Lower, ic.Interval.Upper, ic.SD, ic.Mean, ic.Samples, ic.Excluded)
		}
		b.WriteString("\n")
		for _, ic := range r.Intercepts {
			if img, ok := images[string(ic.Method)]; ok {
				fmt.Fprintf(&b, "![%s resampling intercepts](%s)\n\n", ic.Method, img)
			}
		}
	}

	if len(r.Failures) > 0 {
		b.WriteString("## Stages without a result\n\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "- %s/%s (%s): %s\n", f.Stage, f.Key, f.Code, f.Message)
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func pct(level float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", level*100), "0"), ".") + "%"
}

func keyList(keys []core.VariableKey) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return "{" + strings.Join(names, ", ") + "}"
}
