package compliance

import (
	"context"
	"time"

	"tradegate/internal/infra/log"
	"tradegate/internal/infra/metrics"
	"tradegate/internal/restrictions"
)

const (
	ReasonFrozen   = "asset_frozen"
	ReasonCanceled = "check_canceled"
)

// Verdict is the outcome of a pre-trade restriction check.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Guard blocks trading actions on assets that are restricted at the simulated time.
type Guard struct {
	q       restrictions.Query
	logger  log.Logger
	workers int
}

func NewGuard(q restrictions.Query, logger log.Logger, workers int) *Guard {
	if workers < 1 {
		workers = 1
	}
	return &Guard{q: q, logger: logger, workers: workers}
}

func (g *Guard) Query() restrictions.Query { return g.q }

func (g *Guard) Check(ctx context.Context, asset restrictions.Asset, dt time.Time) (bool, string) {
	if ctx.Err() != nil {
		return false, ReasonCanceled
	}
	variant := restrictions.Variant(g.q)
	start := time.Now()
	restricted := g.q.IsRestricted(asset, dt)
	metrics.RestrictionQueryLatencyUs.WithLabelValues(variant, "single").Observe(float64(time.Since(start).Nanoseconds()) / 1e3)
	observe(variant, restricted)
	if restricted {
		metrics.ComplianceBlocksTotal.Inc()
		metrics.RestrictedActionsTotal.WithLabelValues(ReasonFrozen).Inc()
		g.logger.Debug().Str("asset", string(asset)).Time("dt", dt).Msg("trade_blocked")
		return false, ReasonFrozen
	}
	return true, ""
}

// CheckBatch evaluates every asset at dt; large batches are spread over the guard's workers.
func (g *Guard) CheckBatch(ctx context.Context, assets []restrictions.Asset, dt time.Time) (map[restrictions.Asset]Verdict, error) {
	variant := restrictions.Variant(g.q)
	start := time.Now()
	res, err := restrictions.EvaluateParallel(ctx, g.q, assets, dt, g.workers)
	if err != nil {
		return nil, err
	}
	metrics.RestrictionQueryLatencyUs.WithLabelValues(variant, "batch").Observe(float64(time.Since(start).Nanoseconds()) / 1e3)
	metrics.RestrictionBatchSize.Observe(float64(len(assets)))

	out := make(map[restrictions.Asset]Verdict, len(res))
	blocked := 0
	for a, restricted := range res {
		observe(variant, restricted)
		if restricted {
			blocked++
			out[a] = Verdict{Allowed: false, Reason: ReasonFrozen}
			continue
		}
		out[a] = Verdict{Allowed: true}
	}
	if blocked > 0 {
		metrics.ComplianceBlocksTotal.Add(float64(blocked))
		metrics.RestrictedActionsTotal.WithLabelValues(ReasonFrozen).Add(float64(blocked))
		g.logger.Debug().Int("assets", len(res)).Int("blocked", blocked).Time("dt", dt).Msg("batch_blocked")
	}
	return out, nil
}

func observe(variant string, restricted bool) {
	result := "allowed"
	if restricted {
		result = "restricted"
	}
	metrics.RestrictionQueriesTotal.WithLabelValues(variant, result).Inc()
}
