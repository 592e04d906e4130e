package virusscan

import "context"

// Scanner is the contract every scanning backend implements. Callers depend
// only on this interface, never on a concrete backend type.
//
// Implementations must be safe for concurrent use and must not mutate the
// payload passed to Scan.
type Scanner interface {
	// Scan examines data and returns a verdict. filename is optional
	// metadata used in messages and detections; pass "" when unknown.
	//
	// A returned error means the backend could not produce a verdict;
	// detections are reported through the verdict, not the error.
	Scan(ctx context.Context, data []byte, filename string) (*Verdict, error)

	// HealthCheck is a lightweight liveness probe, independent of Scan.
	HealthCheck(ctx context.Context) (bool, error)

	// Provider identifies the backend.
	Provider() Provider
}
