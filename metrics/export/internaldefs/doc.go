// Package internaldefs holds the shared metric name table consumed by the
// export packages. Names are part of the public telemetry contract: they
// may be appended to, never renamed or removed.
package internaldefs
