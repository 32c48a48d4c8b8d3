package transaction

import (
	"sync"
	"time"
)

// Progress is one sample of a running copy.
type Progress struct {
	Done  int64
	Total int64
}

// Share is the completed fraction in [0, 1]. An empty copy is complete.
func (p Progress) Share() float64 {
	if p.Total <= 0 {
		return 1
	}
	share := float64(p.Done) / float64(p.Total)
	switch {
	case share < 0:
		return 0
	case share > 1:
		return 1
	}
	return share
}

// ProgressFunc receives progress samples. It is called from the goroutine that
// runs Execute and never after Execute returns.
type ProgressFunc func(Progress)

// reporter clamps samples to the total and keeps them non-decreasing.
type reporter struct {
	fn       ProgressFunc
	lastDone int64
}

func (r *reporter) report(p Progress) {
	if r.fn == nil {
		return
	}
	if p.Done > p.Total {
		p.Done = p.Total
	}
	if p.Done < r.lastDone {
		p.Done = r.lastDone
	}
	r.lastDone = p.Done
	r.fn(p)
}

// cancelToken is a one-shot completion signal; Cancel may be called any
// number of times.
type cancelToken struct {
	once sync.Once
	ch   chan struct{}
}

func newCancelToken() *cancelToken {
	return &cancelToken{ch: make(chan struct{})}
}

func (c *cancelToken) Cancel() {
	c.once.Do(func() { close(c.ch) })
}

func (c *cancelToken) Done() <-chan struct{} {
	return c.ch
}

func (c *cancelToken) Canceled() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// sampler polls the size of the destinations until its token is canceled.
type sampler struct {
	interval time.Duration
	total    int64
	measure  func() int64
}

// run reports a sample, then waits one interval, until stop is canceled. The
// token is checked before each poll, and a sample measured while the copy
// finished is dropped so the caller's final sample is the last one delivered.
func (s *sampler) run(stop *cancelToken, report func(Progress)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if stop.Canceled() {
			return
		}
		done := s.measure()
		if stop.Canceled() {
			return
		}
		report(Progress{Done: done, Total: s.total})

		select {
		case <-stop.Done():
			return
		case <-ticker.C:
		}
	}
}
