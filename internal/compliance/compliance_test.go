package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"tradegate/internal/infra/log"
	"tradegate/internal/infra/metrics"
	"tradegate/internal/restrictions"
)

var (
	d3 = time.Date(2011, 1, 3, 0, 0, 0, 0, time.UTC)
	d4 = time.Date(2011, 1, 4, 14, 31, 0, 0, time.UTC)
)

func newGuard() *Guard {
	q := restrictions.NewTimeVersioned([]restrictions.Record{
		{Asset: "A1", EffectiveDate: time.Date(2011, 1, 4, 0, 0, 0, 0, time.UTC), State: restrictions.Frozen},
	})
	return NewGuard(q, log.Nop(), 2)
}

func TestCheck(t *testing.T) {
	g := newGuard()
	before := testutil.ToFloat64(metrics.ComplianceBlocksTotal)

	if ok, reason := g.Check(context.Background(), "A1", d3); !ok || reason != "" {
		t.Fatalf("expected A1 allowed before freeze, got %v %q", ok, reason)
	}
	if ok, reason := g.Check(context.Background(), "A1", d4); ok || reason != ReasonFrozen {
		t.Fatalf("expected A1 blocked, got %v %q", ok, reason)
	}
	if ok, _ := g.Check(context.Background(), "UNKNOWN", d4); !ok {
		t.Fatalf("expected unknown asset allowed")
	}
	if got := testutil.ToFloat64(metrics.ComplianceBlocksTotal) - before; got != 1 {
		t.Fatalf("expected one compliance block, got %v", got)
	}
}

func TestCheckCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if ok, reason := newGuard().Check(ctx, "A2", d4); ok || reason != ReasonCanceled {
		t.Fatalf("expected canceled verdict, got %v %q", ok, reason)
	}
}

func TestCheckBatch(t *testing.T) {
	g := newGuard()
	got, err := g.CheckBatch(context.Background(), []restrictions.Asset{"A1", "A2", "A1"}, d4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(got))
	}
	if v := got["A1"]; v.Allowed || v.Reason != ReasonFrozen {
		t.Fatalf("A1 verdict %+v", v)
	}
	if v := got["A2"]; !v.Allowed || v.Reason != "" {
		t.Fatalf("A2 verdict %+v", v)
	}
}
