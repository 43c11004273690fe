package correlation

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dev-bhaskar8/lp-data/internal/contracts"
)

// TimeframeResults is one timeframe's unranked output
type TimeframeResults struct {
	Timeframe contracts.Timeframe
	Results   []contracts.PairResult
}

// CorrelateAll runs every timeframe in parallel. Inputs are only read, so no locking is needed.
// Output order follows timeframes.
func (e *Engine) CorrelateAll(ctx context.Context, rets map[string]contracts.ReturnSeries, assets []contracts.Asset, timeframes []contracts.Timeframe, asOf time.Time) ([]TimeframeResults, error) {
	out := make([]TimeframeResults, len(timeframes))

	g, ctx := errgroup.WithContext(ctx)
	for i, tf := range timeframes {
		i, tf := i, tf
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = TimeframeResults{
				Timeframe: tf,
				Results:   e.Correlate(rets, assets, tf, asOf),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
