package yield

import (
	"context"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/finkernel/discount"
	"github.com/meenmo/finkernel/rootfind"
)

// Quote is one instrument to revalue: its remaining cashflows and the
// observed dirty price.
type Quote struct {
	ID       string
	Schedule discount.Schedule
	Price    decimal.Decimal
}

// QuoteResult is the outcome of solving one Quote. Err is set instead of
// Result when that quote failed; other quotes are unaffected.
type QuoteResult struct {
	ID     string
	Result Result
	Err    error
}

// SolveYields runs SolveYield for every quote on a worker pool bounded by
// GOMAXPROCS. Results are in input order. Per-quote failures are reported
// in QuoteResult.Err. If ctx is cancelled, unsolved quotes are left zero
// and ctx's error is returned.
func SolveYields(ctx context.Context, quotes []Quote, cfg rootfind.Config) ([]QuoteResult, error) {
	out := make([]QuoteResult, len(quotes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, q := range quotes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := SolveYield(q.Schedule, q.Price, cfg)
			out[i] = QuoteResult{ID: q.ID, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
