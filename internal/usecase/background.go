package usecase

import (
	"context"
	"sync"
)

// Background runs session-scoped work that must outlive a single request.
type Background struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBackground() *Background {
	ctx, cancel := context.WithCancel(context.Background())
	return &Background{ctx: ctx, cancel: cancel}
}

// Go runs fn with the session context.
func (b *Background) Go(fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(b.ctx)
	}()
}

// Wait blocks until every started task returns.
func (b *Background) Wait() {
	b.wg.Wait()
}

// Close cancels the session context and waits for tasks to return.
func (b *Background) Close() {
	b.cancel()
	b.wg.Wait()
}
