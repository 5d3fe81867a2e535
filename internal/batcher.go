package internal

import "sync/atomic"

type Batcher struct {
	// each nested batch increases the depth by 1
	// if depth > 0, flushing is deferred until the outermost batch is complete
	depth atomic.Int32
}

func NewBatcher() *Batcher {
	return &Batcher{}
}

func (b *Batcher) IsBatching() bool {
	return b.depth.Load() > 0
}

func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth.Add(1)
	defer func() {
		if b.depth.Add(-1) == 0 && onComplete != nil {
			onComplete()
		}
	}()

	fn()
}

// Batch schedules everything queued by fn without flushing until fn returns.
func (s *Scheduler) Batch(fn func()) {
	s.batcher.Batch(fn, s.wake)
}
