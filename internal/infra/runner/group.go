package runner

import (
	"context"
	"sync"
)

// Group runs long-lived components (HTTP server, listeners) and lets main
// wait for all of them after cancelling the shared context.
type Group struct {
	wg sync.WaitGroup
}

// Go starts fn and returns a channel that receives its result exactly once.
func (g *Group) Go(ctx context.Context, fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		done <- fn(ctx)
		close(done)
	}()
	return done
}

func (g *Group) Wait() { g.wg.Wait() }
