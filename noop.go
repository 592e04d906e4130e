package virusscan

import "context"

// NoopScanner is the backend used when scanning is administratively disabled.
// It reports every payload as clean without looking at it.
type NoopScanner struct{}

var _ Scanner = (*NoopScanner)(nil)

// NewNoop creates a no-op scanner.
func NewNoop() *NoopScanner {
	return &NoopScanner{}
}

// Scan implements Scanner. The payload is never inspected.
func (s *NoopScanner) Scan(_ context.Context, _ []byte, filename string) (*Verdict, error) {
	msg := "scanning disabled"
	if filename != "" {
		msg = "scanning disabled: " + filename
	}
	return &Verdict{
		Clean:   true,
		Message: msg,
	}, nil
}

// HealthCheck implements Scanner; a disabled scanner is always "healthy".
func (s *NoopScanner) HealthCheck(_ context.Context) (bool, error) {
	return true, nil
}

// Provider implements Scanner.
func (s *NoopScanner) Provider() Provider {
	return ProviderNone
}
