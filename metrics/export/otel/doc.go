// Package otel exports engine metrics through OpenTelemetry observable
// instruments. The exporter holds no state of its own: every collection
// reads one fresh MetricsSnapshot, so a process can attach any OTel
// reader (periodic, manual, OTLP-backed) without touching the engine.
package otel
