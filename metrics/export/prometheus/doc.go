// Package prometheus renders engine metrics in the Prometheus text
// exposition format, either as a string or as an http.Handler to mount
// at /metrics. It depends only on the engine's snapshot surface.
package prometheus
