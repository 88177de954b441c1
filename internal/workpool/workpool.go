// Package workpool fans a fixed number of independent work items out to a
// bounded set of goroutines.
package workpool

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProgressEvery is how many finished items separate two progress log lines.
const ProgressEvery = 1000

// Pool runs work items on at most Workers goroutines.
type Pool struct {
	Workers int
	Logger  logrus.FieldLogger

	done int64
}

// New returns a pool with the given worker count. Zero or less selects
// runtime.NumCPU.
func New(workers int, logger logrus.FieldLogger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Pool{Workers: workers, Logger: logger}
}

// Done returns the number of items finished by the last Run.
func (p *Pool) Done() int64 {
	return atomic.LoadInt64(&p.done)
}

// Run calls fn(ctx, i) for every i in [0, n). The first error returned by
// fn cancels the context handed to the remaining calls and is returned.
// Items not yet started when ctx is cancelled are skipped.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	atomic.StoreInt64(&p.done, 0)
	if err := ctx.Err(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)

	work := make(chan int, p.Workers*2)
	g.Go(func() error {
		defer close(work)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case work <- i:
			}
		}
		return nil
	})

	for w := 0; w < p.Workers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case i, ok := <-work:
					if !ok {
						return nil
					}
					if err := fn(ctx, i); err != nil {
						return err
					}
					if d := atomic.AddInt64(&p.done, 1); d%ProgressEvery == 0 {
						p.Logger.WithField("done", d).Debug("work items finished")
					}
				}
			}
		})
	}
	return g.Wait()
}
