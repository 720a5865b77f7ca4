package editor

import (
	"sync"
	"time"
)

// poller posts tick onto the executor at a fixed interval until stopped.
type poller struct {
	stop chan struct{}
	once sync.Once
}

func startPoller(ex *Executor, interval time.Duration, tick func()) *poller {
	p := &poller{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := ex.Post(tick); err != nil {
					return
				}
			case <-p.stop:
				return
			}
		}
	}()

	return p
}

func (p *poller) Stop() {
	p.once.Do(func() { close(p.stop) })
}
