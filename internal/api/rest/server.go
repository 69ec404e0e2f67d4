package rest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/compliance"
	"tradegate/internal/infra/log"
	"tradegate/internal/restrictions"
)

const maxBatchAssets = 100_000

type Server struct {
	router chi.Router
	guard  *compliance.Guard
	logger log.Logger
	now    func() time.Time
}

func New(guard *compliance.Guard, logger log.Logger) *Server {
	s := &Server{router: chi.NewRouter(), guard: guard, logger: logger, now: time.Now}
	s.router.Get("/status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.router.Route("/v1/restrictions", func(r chi.Router) {
		r.Post("/batch", s.batch)
		r.Get("/{asset}", s.single)
		r.Get("/{asset}/history", s.history)
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

type singleResponse struct {
	Asset      string    `json:"asset"`
	DT         time.Time `json:"dt"`
	Restricted bool      `json:"restricted"`
	Reason     string    `json:"reason,omitempty"`
}

type batchRequest struct {
	Assets []string `json:"assets"`
	DT     string   `json:"dt"`
}

type batchResponse struct {
	DT      time.Time       `json:"dt"`
	Results map[string]bool `json:"results"`
}

type historyResponse struct {
	Asset       string                    `json:"asset"`
	Transitions []restrictions.Transition `json:"transitions"`
}

func (s *Server) single(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")
	dt, err := s.parseDT(r.URL.Query().Get("dt"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dt: want RFC3339")
		return
	}
	ok, reason := s.guard.Check(r.Context(), restrictions.Asset(asset), dt)
	if reason == compliance.ReasonCanceled {
		writeError(w, http.StatusServiceUnavailable, "check canceled")
		return
	}
	writeJSON(w, http.StatusOK, singleResponse{Asset: asset, DT: dt, Restricted: !ok, Reason: reason})
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.Assets) > maxBatchAssets {
		writeError(w, http.StatusRequestEntityTooLarge, "too many assets")
		return
	}
	dt, err := s.parseDT(req.DT)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dt: want RFC3339")
		return
	}
	assets := make([]restrictions.Asset, len(req.Assets))
	for i, a := range req.Assets {
		assets[i] = restrictions.Asset(a)
	}
	verdicts, err := s.guard.CheckBatch(r.Context(), assets, dt)
	if err != nil {
		s.logger.Debug().Err(err).Int("assets", len(assets)).Msg("batch_aborted")
		writeError(w, http.StatusServiceUnavailable, "check canceled")
		return
	}
	out := batchResponse{DT: dt, Results: make(map[string]bool, len(verdicts))}
	for a, v := range verdicts {
		out.Results[string(a)] = !v.Allowed
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	tv, ok := timeVersioned(s.guard.Query())
	if !ok {
		writeError(w, http.StatusNotFound, "restrictions are not time-versioned")
		return
	}
	asset := chi.URLParam(r, "asset")
	h := tv.History(restrictions.Asset(asset))
	if h == nil {
		h = []restrictions.Transition{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Asset: asset, Transitions: h})
}

// parseDT reads an RFC3339 instant; empty means now. A '+' offset sent unencoded in a
// query string arrives as a space and is restored.
func (s *Server) parseDT(v string) (time.Time, error) {
	if v == "" {
		return s.now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil && strings.Contains(v, " ") {
		return time.Parse(time.RFC3339Nano, strings.ReplaceAll(v, " ", "+"))
	}
	return t, err
}

// timeVersioned finds the time-versioned index behind q, looking through providers and unions.
func timeVersioned(q restrictions.Query) (*restrictions.TimeVersioned, bool) {
	switch v := q.(type) {
	case *restrictions.TimeVersioned:
		return v, true
	case *restrictions.Union:
		for _, p := range v.Parts() {
			if tv, ok := timeVersioned(p); ok {
				return tv, true
			}
		}
	case interface{ Current() restrictions.Query }:
		return timeVersioned(v.Current())
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
