// Package metric exposes forkmesh metrics in Prometheus format.
//
//   - prometheus.go: the Registry, its series and the /metrics handler
//   - collector.go: scrape-time collection of registry shard populations
//
// Registry implements service.Recorder, so the fork store reports its
// lifecycle events straight into Prometheus series.
package metric
