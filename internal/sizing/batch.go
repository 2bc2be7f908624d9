package sizing

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sceap-org/sceap/internal/model"
)

// BatchError pairs a failed cable with its error.
type BatchError struct {
	CableNumber string `json:"cable_number"`
	Err         error  `json:"-"`
	Reason      string `json:"reason"`
}

// BatchResult holds the outcome of a bulk sizing call: successes in input
// order plus a parallel list of per-cable failures. One cable's failure
// never aborts the rest of the batch.
type BatchResult struct {
	Results []model.SizingResult `json:"results"`
	Errors  []BatchError         `json:"errors"`
}

// SizeBatch sizes all specs concurrently, bounded by concurrency (minimum
// 1). Cables are independent; order of both lists follows input order.
func (e *Engine) SizeBatch(ctx context.Context, specs []model.CableSpec, concurrency int) *BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*model.SizingResult, len(specs))
	errs := make([]error, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = e.Size(spec)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are collected per cable

	out := &BatchResult{}
	for i := range specs {
		if errs[i] != nil {
			out.Errors = append(out.Errors, BatchError{
				CableNumber: specs[i].CableNumber,
				Err:         errs[i],
				Reason:      errs[i].Error(),
			})
			continue
		}
		out.Results = append(out.Results, *results[i])
	}
	return out
}
