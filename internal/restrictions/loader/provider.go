package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"tradegate/internal/config"
	"tradegate/internal/infra/health"
	"tradegate/internal/infra/log"
	"tradegate/internal/infra/metrics"
	"tradegate/internal/restrictions"
)

type active struct {
	q        restrictions.Query
	loadedAt time.Time
}

// Provider serves queries from the most recently built restrictions instance.
// Built instances are never modified; a reload builds a new one and swaps it in.
type Provider struct {
	cfg    config.Restrictions
	logger log.Logger
	cur    atomic.Pointer[active]
}

func NewProvider(cfg config.Restrictions, logger log.Logger) (*Provider, error) {
	p := &Provider{cfg: cfg, logger: logger}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Current() restrictions.Query { return p.cur.Load().q }

func (p *Provider) LoadedAt() time.Time { return p.cur.Load().loadedAt }

func (p *Provider) IsRestricted(asset restrictions.Asset, dt time.Time) bool {
	return p.Current().IsRestricted(asset, dt)
}

func (p *Provider) IsRestrictedBatch(assets []restrictions.Asset, dt time.Time) map[restrictions.Asset]bool {
	return p.Current().IsRestrictedBatch(assets, dt)
}

func (p *Provider) Variant() string { return restrictions.Variant(p.Current()) }

// Reload rebuilds from the configured source. On failure the previous instance stays active.
func (p *Provider) Reload() error {
	q, err := Build(p.cfg)
	if err != nil {
		metrics.RestrictionReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build restrictions: %w", err)
	}
	now := time.Now()
	p.cur.Store(&active{q: q, loadedAt: now})
	health.MarkLoaded(now)
	assets, transitions := IndexSize(q)
	metrics.RestrictionIndexAssets.Set(float64(assets))
	metrics.RestrictionIndexTransitions.Set(float64(transitions))
	metrics.RestrictionReloadsTotal.WithLabelValues("ok").Inc()
	p.logger.Info().
		Str("mode", p.cfg.Mode).
		Str("variant", restrictions.Variant(q)).
		Int("assets", assets).
		Int("transitions", transitions).
		Msg("restrictions_loaded")
	return nil
}

// Watch reloads whenever the source file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are picked up.
func (p *Provider) Watch(ctx context.Context) error {
	if p.cfg.File == "" {
		return fmt.Errorf("watch: no restrictions file configured")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(p.cfg.File)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	p.logger.Debug().Str("file", target).Msg("watching restrictions file")

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				continue
			}
			if err := p.Reload(); err != nil {
				p.logger.Warn().Err(err).Str("file", target).Msg("restrictions reload failed; keeping previous index")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn().Err(err).Msg("restrictions watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}
