package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/pipeline"
)

// Result is the outcome for one input row.
type Result struct {
	Line        int                  `json:"line"`
	Features    models.FeatureVector `json:"-"`
	Probability float64              `json:"probability"`
	Label       models.Label         `json:"label,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// OK reports whether the row was scored.
func (r Result) OK() bool { return r.Error == "" }

// Summary counts batch outcomes.
type Summary struct {
	Total     int `json:"total"`
	Malignant int `json:"malignant"`
	Benign    int `json:"benign"`
	Failed    int `json:"failed"`
}

// Score runs every row through inf using up to workers goroutines (0 means
// GOMAXPROCS). Results keep input order. Row-level failures are recorded in
// the row's result; an artifact error stops the batch and is returned.
func Score(ctx context.Context, inf pipeline.Inferer, rows []Row, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range rows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := rows[i]
			res := Result{Line: row.Line, Features: row.Features}
			if row.Err != nil {
				res.Error = row.Err.Error()
				results[i] = res
				return nil
			}
			out, err := inf.Infer(row.Features)
			if err != nil {
				if models.IsArtifactError(err) {
					return fmt.Errorf("line %d: %w", row.Line, err)
				}
				res.Error = err.Error()
				results[i] = res
				return nil
			}
			res.Probability = out.Probability
			res.Label = out.Label
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summarize counts labels and failures.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case !r.OK():
			s.Failed++
		case r.Label == models.LabelMalignant:
			s.Malignant++
		default:
			s.Benign++
		}
	}
	return s
}
