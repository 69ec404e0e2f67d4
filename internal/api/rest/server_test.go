package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradegate/internal/compliance"
	"tradegate/internal/infra/log"
	"tradegate/internal/restrictions"
)

func newServer(q restrictions.Query) *Server {
	s := New(compliance.NewGuard(q, log.Nop(), 2), log.Nop())
	s.now = func() time.Time { return time.Date(2011, 1, 5, 12, 0, 0, 0, time.UTC) }
	return s
}

func timeVersionedFixture() restrictions.Query {
	return restrictions.NewTimeVersioned([]restrictions.Record{
		{Asset: "A1", EffectiveDate: time.Date(2011, 1, 6, 0, 0, 0, 0, time.UTC), State: restrictions.Frozen},
		{Asset: "A1", EffectiveDate: time.Date(2011, 1, 5, 0, 0, 0, 0, time.UTC), State: restrictions.Allowed},
		{Asset: "A1", EffectiveDate: time.Date(2011, 1, 4, 0, 0, 0, 0, time.UTC), State: restrictions.Frozen},
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSingle(t *testing.T) {
	h := newServer(timeVersionedFixture()).Handler()
	cases := []struct {
		dt   string
		want bool
	}{
		{"2011-01-03T00:00:00Z", false},
		{"2011-01-04T00:00:00Z", true},
		{"2011-01-04T14:31:00Z", true},
		{"2011-01-05T14:31:00Z", false},
		{"2011-01-06T00:00:00Z", true},
		{"", false}, // now = 2011-01-05 12:00
	}
	for _, tc := range cases {
		rec := do(t, h, http.MethodGet, "/v1/restrictions/A1?dt="+tc.dt, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("dt=%s: expected 200, got %d", tc.dt, rec.Code)
		}
		var resp singleResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Restricted != tc.want || resp.Asset != "A1" {
			t.Fatalf("dt=%s: got %+v", tc.dt, resp)
		}
		if tc.want && resp.Reason != compliance.ReasonFrozen {
			t.Fatalf("dt=%s: expected reason %s, got %q", tc.dt, compliance.ReasonFrozen, resp.Reason)
		}
	}
}

func TestSingleBadDT(t *testing.T) {
	rec := do(t, newServer(restrictions.NewNoop()).Handler(), http.MethodGet, "/v1/restrictions/A1?dt=2011-01-04", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatchStatic(t *testing.T) {
	h := newServer(restrictions.NewStatic([]restrictions.Asset{"A1", "A2"})).Handler()
	rec := do(t, h, http.MethodPost, "/v1/restrictions/batch", `{"assets":["A1","A2","A3"],"dt":"2011-01-04T00:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp batchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]bool{"A1": true, "A2": true, "A3": false}
	if len(resp.Results) != len(want) {
		t.Fatalf("unexpected results %v", resp.Results)
	}
	for a, v := range want {
		if resp.Results[a] != v {
			t.Fatalf("%s: expected %v, got %v", a, v, resp.Results[a])
		}
	}
}

func TestBatchBadBody(t *testing.T) {
	h := newServer(restrictions.NewNoop()).Handler()
	if rec := do(t, h, http.MethodPost, "/v1/restrictions/batch", `{"assets":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/restrictions/batch", `{"assets":["A1"],"dt":"soon"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	q := restrictions.NewUnion(timeVersionedFixture(), restrictions.NewStatic([]restrictions.Asset{"A9"}))
	h := newServer(q).Handler()
	rec := do(t, h, http.MethodGet, "/v1/restrictions/A1/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp historyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transitions) != 3 || resp.Transitions[0].State != restrictions.Frozen || resp.Transitions[1].State != restrictions.Allowed {
		t.Fatalf("unexpected history %+v", resp.Transitions)
	}
	if !resp.Transitions[0].EffectiveDate.Equal(time.Date(2011, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("history not ordered: %+v", resp.Transitions)
	}

	if rec := do(t, newServer(restrictions.NewNoop()).Handler(), http.MethodGet, "/v1/restrictions/A1/history", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for noop, got %d", rec.Code)
	}
}

func TestSingleUnencodedOffset(t *testing.T) {
	h := newServer(timeVersionedFixture()).Handler()
	// 2011-01-04T05:00:00+05:00 is 2011-01-04T00:00:00Z, the first frozen instant
	rec := do(t, h, http.MethodGet, "/v1/restrictions/A1?dt=2011-01-04T05:00:00+05:00", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp singleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Restricted {
		t.Fatalf("expected A1 restricted at the freeze boundary, got %+v", resp)
	}

	rec = do(t, h, http.MethodGet, "/v1/restrictions/A1?dt=2011-01-03T23:59:59%2B00:00", "")
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Restricted {
		t.Fatalf("expected encoded offset to parse and A1 allowed, got %+v err=%v", resp, err)
	}
}

func TestCanceledRequestsAreNotSuccess(t *testing.T) {
	h := newServer(restrictions.NewStatic([]restrictions.Asset{"A1"})).Handler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/restrictions/A1?dt=2011-01-04T00:00:00Z", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("single: expected 503, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/restrictions/batch", strings.NewReader(`{"assets":["A1","A2"],"dt":"2011-01-04T00:00:00Z"}`)).WithContext(ctx)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("batch: expected 503, got %d", rec.Code)
	}
}
