package virusscan

import "time"

// Provider identifies a scanning backend.
type Provider string

const (
	// ProviderClamd is the streaming client speaking the clamd wire protocol.
	ProviderClamd Provider = "clamd"
	// ProviderCloud is a placeholder for a future hosted scanning service.
	ProviderCloud Provider = "cloud"
	// ProviderNone is the no-op backend used when scanning is disabled.
	ProviderNone Provider = "none"
)

// Verdict is the result of scanning one payload.
// It is produced fresh per call and never persisted.
type Verdict struct {
	// Clean is true when no threat was found (including the skipped and
	// disabled outcomes, which are deliberately treated as clean).
	Clean bool
	// Threat is the detected signature name, empty when Clean.
	Threat string
	// Message is a human-readable description of the outcome.
	Message string
	// Duration is the wall-clock time spent on the scan. Zero on the
	// disabled and size-skip paths.
	Duration time.Duration
}

// IsInfected returns true if the scan found a threat.
func (v *Verdict) IsInfected() bool {
	return !v.Clean
}

// IsClean returns true if the payload is clean.
func (v *Verdict) IsClean() bool {
	return v.Clean
}

// EICAR is the standard antivirus test signature. Any real scanning daemon
// reports it as infected; useful for end-to-end verification against a live
// daemon without handling actual malware.
var EICAR = []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)
