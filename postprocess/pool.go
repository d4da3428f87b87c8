package postprocess

import (
	"context"
	"sync"
)

// pool runs tasks on at most size goroutines. Wait is the join barrier.
type pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func newPool(size int) *pool {
	if size < 1 {
		size = 1
	}
	return &pool{sem: make(chan struct{}, size)}
}

// Go blocks until a slot is free, then runs fn on it. It returns ctx.Err()
// without running fn when ctx is cancelled first.
func (p *pool) Go(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()
		fn()
	}()
	return nil
}

func (p *pool) Wait() {
	p.wg.Wait()
}
