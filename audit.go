package signet

import (
	"io"

	internalaudit "github.com/signet-auth/signet/internal/audit"
)

// AuditEvent is a structured record of one token lifecycle operation.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Audit event types emitted by the engine.
const (
	AuditTokenIssued    = "token.issued"
	AuditTokenVerified  = "token.verified"
	AuditTokenRefreshed = "token.refreshed"
	AuditTokenExchanged = "token.exchanged"
	AuditTokenRevoked   = "token.revoked"
)
