// Package metric provides Prometheus metrics for GymDesk.
//
// Metrics include:
//
//   - HTTP request counters and latency histograms by route
//   - Login outcome counters
//   - Active session gauge
//   - Storage engine statistics (registered by the storage package)
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
