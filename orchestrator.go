package virusscan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quay/zlog"
)

// Orchestrator is the entry point the rest of the application uses. It owns
// the resolved Policy and exactly one backend chosen at construction, and it
// is the only place the fail-open decision is made: backends report facts,
// the orchestrator applies policy.
//
// An Orchestrator holds no mutable state after construction; one instance is
// safe to share across any number of concurrent callers.
type Orchestrator struct {
	policy  Policy
	backend Scanner
}

// New builds an orchestrator for the given policy. Backend construction
// errors (for example a malformed daemon address) are returned; an
// unrecognized provider name is not an error — it falls back to the no-op
// backend with a logged warning, because misconfiguration must never crash
// the host application.
func New(ctx context.Context, policy Policy) (*Orchestrator, error) {
	ctx = zlog.ContextWithValues(ctx, "component", "virusscan/New")

	backend, err := selectBackend(ctx, policy)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{policy: policy, backend: backend}, nil
}

func selectBackend(ctx context.Context, policy Policy) (Scanner, error) {
	if !policy.Enabled {
		return NewNoop(), nil
	}
	switch policy.Provider {
	case ProviderClamd:
		return NewClamd(policy.Network, policy.Address,
			WithTimeout(policy.Timeout),
			WithMaxFileSize(policy.MaxFileSize),
		)
	case ProviderCloud:
		return NewCloud(), nil
	case ProviderNone:
		return NewNoop(), nil
	default:
		zlog.Warn(ctx).
			Str("provider", string(policy.Provider)).
			Msg("unrecognized scan provider, falling back to no-op backend")
		return NewNoop(), nil
	}
}

// Provider reports the backend actually instantiated, which differs from the
// policy's provider after the unrecognized-provider fallback.
func (o *Orchestrator) Provider() Provider {
	return o.backend.Provider()
}

// Scan scans data and applies policy to the backend's outcome.
//
// Callers see exactly three shapes: a Verdict, a ThreatError, or an
// UnavailableError. A detection is always raised as a ThreatError; FailOpen
// only downgrades unavailability, never a positive finding.
func (o *Orchestrator) Scan(ctx context.Context, data []byte, filename string) (*Verdict, error) {
	ctx = zlog.ContextWithValues(ctx,
		"component", "virusscan/Orchestrator.Scan",
		"scan_id", uuid.New().String(),
	)

	if !o.policy.Enabled {
		scanTotal.WithLabelValues(string(o.Provider()), outcomeDisabled).Inc()
		return &Verdict{Clean: true, Message: "scanning disabled"}, nil
	}

	start := time.Now()
	verdict, err := o.backend.Scan(ctx, data, filename)
	elapsed := time.Since(start)
	provider := string(o.Provider())
	scanDuration.WithLabelValues(provider).Observe(elapsed.Seconds())

	if err != nil {
		reason := err.Error()
		if o.policy.FailOpen {
			zlog.Warn(ctx).
				Str("filename", filename).
				Err(err).
				Msg("scan failed, allowing content under fail-open policy")
			scanTotal.WithLabelValues(provider, outcomeDegraded).Inc()
			return &Verdict{
				Clean:    true,
				Message:  fmt.Sprintf("scan failed, allowed under fail-open policy: %s", reason),
				Duration: elapsed,
			}, nil
		}
		scanTotal.WithLabelValues(provider, outcomeUnavailable).Inc()
		if IsUnavailable(err) {
			return nil, err
		}
		return nil, NewUnavailableError(reason, err)
	}

	if verdict.IsInfected() {
		zlog.Info(ctx).
			Str("filename", filename).
			Str("threat", verdict.Threat).
			Msg("threat detected")
		scanTotal.WithLabelValues(provider, outcomeInfected).Inc()
		return nil, &ThreatError{Filename: filename, Threat: verdict.Threat}
	}

	// The size-skip shortcut keeps its zero duration; everything that went
	// over the wire reports measured wall-clock time.
	if verdict.Duration > 0 {
		verdict.Duration = elapsed
		scanTotal.WithLabelValues(provider, outcomeClean).Inc()
	} else {
		scanTotal.WithLabelValues(provider, outcomeSkipped).Inc()
	}
	return verdict, nil
}

// HealthCheck probes the backend. It never returns an error: a failing
// delegate degrades to the fail-open value, and a disabled subsystem is
// always healthy.
func (o *Orchestrator) HealthCheck(ctx context.Context) bool {
	if !o.policy.Enabled {
		return true
	}
	ctx = zlog.ContextWithValues(ctx, "component", "virusscan/Orchestrator.HealthCheck")
	ok, err := o.backend.HealthCheck(ctx)
	if err != nil {
		zlog.Warn(ctx).
			Err(err).
			Bool("fail_open", o.policy.FailOpen).
			Msg("health check failed")
		return o.policy.FailOpen
	}
	return ok
}
