package metrics

import (
	"time"

	"media-editor/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current job statistics
type Stats struct {
	Queued    int
	Running   int
	Completed int
	Failed    int
	Cancelled int
	Recorded  int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	JobsQueued.Set(float64(stats.Queued))
	JobsTracked.WithLabelValues("queued").Set(float64(stats.Queued))
	JobsTracked.WithLabelValues("running").Set(float64(stats.Running))
	JobsTracked.WithLabelValues("completed").Set(float64(stats.Completed))
	JobsTracked.WithLabelValues("failed").Set(float64(stats.Failed))
	JobsTracked.WithLabelValues("cancelled").Set(float64(stats.Cancelled))
	JobsRecordedTotal.Set(float64(stats.Recorded))

	logging.Debug("Metrics collected: queued=%d, running=%d, completed=%d, failed=%d, cancelled=%d, recorded=%d",
		stats.Queued, stats.Running, stats.Completed, stats.Failed, stats.Cancelled, stats.Recorded)
}
