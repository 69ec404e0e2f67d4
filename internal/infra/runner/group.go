package runner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Group runs named long-lived workers. Each worker's result is delivered once on the
// channel returned by Go, and its exit is logged.
type Group struct {
	Logger zerolog.Logger
	wg     sync.WaitGroup
}

func (g *Group) Go(ctx context.Context, name string, fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		start := time.Now()
		err := fn(ctx)
		ev := g.Logger.Debug()
		if err != nil {
			ev = g.Logger.Error().Err(err)
		}
		ev.Str("worker", name).Dur("uptime", time.Since(start)).Msg("worker_exited")
		done <- err
		close(done)
	}()
	return done
}

func (g *Group) Wait() { g.wg.Wait() }
