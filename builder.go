package signet

import "errors"

// Builder assembles an [Engine]. One builder builds one engine; reuse is
// rejected so no two engines ever share mutable construction state.
//
// The backend is selected here, explicitly, once per instance. There is no
// runtime scheme lookup: callers construct jwt.New(), onetime.New(store),
// or their own [Backend] and hand it in.
type Builder struct {
	config    Config
	configSet bool
	backend   Backend
	owner     Owner
	auditSink AuditSink

	built bool
}

// New returns a [Builder] seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration. The config is cloned;
// later mutation of the caller's value has no effect on the engine.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	b.configSet = true
	return b
}

// WithBackend sets the token scheme the engine orchestrates.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithOwner sets the application callbacks (subject mapping and lifecycle
// hooks).
func (b *Builder) WithOwner(owner Owner) *Builder {
	b.owner = owner
	return b
}

// WithAuditSink sets the sink receiving audit events. Auditing still has
// to be enabled via Config.Audit.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithAuditEnabled toggles audit event emission.
func (b *Builder) WithAuditEnabled(enabled bool) *Builder {
	b.config.Audit.Enabled = enabled
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns an immutable [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.backend == nil {
		return nil, errors.New("backend is required")
	}
	if b.owner == nil {
		return nil, errors.New("owner is required")
	}
	if err := validateConfig(&b.config); err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:  b.config,
		backend: b.backend,
		owner:   b.owner,
		audit:   newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics: NewMetrics(b.config.Metrics),
	}, nil
}
