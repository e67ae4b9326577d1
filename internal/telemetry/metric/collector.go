package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/forkmesh-go/pkg/cmap"
)

// ShardCollector reports the population of each fork registry shard at
// scrape time.
type ShardCollector struct {
	stats func() []cmap.ShardStats
	desc  *prometheus.Desc
}

// NewShardCollector returns a collector reading stats on every scrape.
func NewShardCollector(stats func() []cmap.ShardStats) *ShardCollector {
	return &ShardCollector{
		stats: stats,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "shard_forks"),
			"Live forks per registry shard",
			[]string{"shard"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *ShardCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *ShardCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.stats() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue,
			float64(s.Count), strconv.Itoa(s.Index))
	}
}
