package backtest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tradegate/internal/compliance"
	"tradegate/internal/infra/log"
	"tradegate/internal/infra/metrics"
	"tradegate/internal/restrictions"
)

// Summary aggregates a replay of order intents through the compliance guard.
type Summary struct {
	Rows           int
	Allowed        int
	Blocked        int
	Skipped        int
	BlockedByAsset map[restrictions.Asset]int
}

// Replay feeds order intents through g and counts verdicts.
// CSV format: ts,asset[,...]; ts is RFC3339. Extra columns are ignored and rows that
// cannot be parsed are skipped.
func Replay(ctx context.Context, r io.Reader, g *compliance.Guard) (Summary, error) {
	s := Summary{BlockedByAsset: map[restrictions.Asset]int{}}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	for {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s, fmt.Errorf("read intents: %w", err)
		}
		s.Rows++
		if len(rec) < 2 {
			s.Skipped++
			metrics.BacktestIntentsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[0]))
		asset := strings.TrimSpace(rec[1])
		if err != nil || asset == "" {
			s.Skipped++
			metrics.BacktestIntentsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if ok, _ := g.Check(ctx, restrictions.Asset(asset), ts); ok {
			s.Allowed++
			metrics.BacktestIntentsTotal.WithLabelValues("allowed").Inc()
		} else {
			s.Blocked++
			s.BlockedByAsset[restrictions.Asset(asset)]++
			metrics.BacktestIntentsTotal.WithLabelValues("blocked").Inc()
		}
	}
	return s, nil
}

// RunCSV replays the intents file at path and logs the summary.
func RunCSV(ctx context.Context, path string, g *compliance.Guard, logger log.Logger) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	s, err := Replay(ctx, f, g)
	if err != nil {
		return s, err
	}
	ratio := 0.0
	if evaluated := s.Allowed + s.Blocked; evaluated > 0 {
		ratio = float64(s.Blocked) / float64(evaluated)
	}
	logger.Info().
		Str("file", path).
		Int("rows", s.Rows).
		Int("allowed", s.Allowed).
		Int("blocked", s.Blocked).
		Int("skipped", s.Skipped).
		Float64("blocked_ratio", ratio).
		Msg("backtest_complete")
	return s, nil
}
