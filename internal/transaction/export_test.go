package transaction

import "time"

// WithChunkDelay slows every copied chunk down so tests can observe a copy
// in flight.
func WithChunkDelay(d time.Duration) Option {
	return func(e *env) { e.chunkDelay = d }
}

type Sampler = sampler

func NewSampler(interval time.Duration, total int64, measure func() int64) *Sampler {
	return &sampler{interval: interval, total: total, measure: measure}
}

// RunUntil runs the sampler until stop is closed.
func (s *Sampler) RunUntil(stop <-chan struct{}, report func(Progress)) {
	token := newCancelToken()
	select {
	case <-stop:
		token.Cancel()
	default:
		go func() {
			<-stop
			token.Cancel()
		}()
	}
	s.run(token, report)
}
