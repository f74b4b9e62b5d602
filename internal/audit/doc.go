// Package audit defines the audit event model and the sink implementations
// shared between the root package's async dispatcher and callers that
// consume events directly.
//
// Sinks must be cheap and non-blocking from the engine's perspective; slow
// consumers belong behind ChannelSink.
package audit
