package virusscan

import "context"

// CloudScanner is a placeholder for a future hosted scanning service. It
// constructs successfully so the provider can be selected ahead of the
// transport landing, but every probe and scan reports unavailability, which
// the orchestrator then subjects to the fail-open policy like any other
// outage.
type CloudScanner struct{}

var _ Scanner = (*CloudScanner)(nil)

// NewCloud creates the placeholder cloud scanner.
func NewCloud() *CloudScanner {
	return &CloudScanner{}
}

// Scan implements Scanner.
func (s *CloudScanner) Scan(_ context.Context, _ []byte, _ string) (*Verdict, error) {
	return nil, NewUnavailableError("cloud scanning not available", ErrNotImplemented)
}

// HealthCheck implements Scanner.
func (s *CloudScanner) HealthCheck(_ context.Context) (bool, error) {
	return false, NewUnavailableError("cloud scanning not available", ErrNotImplemented)
}

// Provider implements Scanner.
func (s *CloudScanner) Provider() Provider {
	return ProviderCloud
}
