package logger

import (
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/chachabrian/swiftparcel-backend/internal/config"
)

// NewRelicApp starts the New Relic agent. It returns nil when no license key
// is configured, and every caller treats a nil application as disabled.
func NewRelicApp(cfg *config.Config) (*newrelic.Application, error) {
	if cfg.Observability.NewRelicLicenseKey == "" {
		return nil, nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.Observability.AppName),
		newrelic.ConfigLicense(cfg.Observability.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(false),
	)
	if err != nil {
		return nil, errors.Wrap(err, "start new relic")
	}
	return app, nil
}

// WithTraceContext adds the trace and span ids of txn to l.
func WithTraceContext(l zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	md := txn.GetLinkingMetadata()
	return l.With().
		Str("trace.id", md.TraceID).
		Str("span.id", md.SpanID).
		Logger()
}
