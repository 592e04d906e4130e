package virusscan

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied by DefaultPolicy and NewClamd. All are configurable; none
// is a protocol invariant.
const (
	// DefaultTimeout bounds the dial and every subsequent socket operation
	// of a single scan.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxFileSize is the largest payload sent to the daemon. Larger
	// payloads are skipped, not rejected.
	DefaultMaxFileSize = 25 << 20 // 25 MiB
	// DefaultChunkSize is the chunk length used for the streaming upload.
	DefaultChunkSize = 4096
)

// Policy is the resolved organization-wide scanning configuration. It is
// read once at orchestrator construction and immutable afterwards.
type Policy struct {
	// Enabled gates the whole subsystem; when false every scan reports
	// clean without contacting a backend.
	Enabled bool
	// Provider selects the backend. An unrecognized value falls back to
	// the no-op backend with a logged warning; it is never a hard error.
	Provider Provider
	// FailOpen controls what happens when the backend is unavailable:
	// true allows the content through with a warning, false rejects it.
	// It never suppresses a positive detection.
	FailOpen bool
	// Timeout bounds connection establishment and response reads.
	Timeout time.Duration
	// MaxFileSize is the size gate; larger payloads skip scanning.
	MaxFileSize int64
	// Network is "tcp" or "unix".
	Network string
	// Address is host:port for tcp, or the socket path for unix.
	Address string
}

// DefaultPolicy returns a policy with scanning enabled against a local clamd
// on the conventional TCP port.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:     true,
		Provider:    ProviderClamd,
		FailOpen:    false,
		Timeout:     DefaultTimeout,
		MaxFileSize: DefaultMaxFileSize,
		Network:     "tcp",
		Address:     "127.0.0.1:3310",
	}
}

// PolicyFromEnv resolves a Policy from the environment, optionally loading an
// env file first. envFile may be empty; a missing file is not an error.
//
// Recognized variables: SCAN_ENABLED, SCAN_PROVIDER, SCAN_FAIL_OPEN,
// SCAN_TIMEOUT (Go duration), SCAN_MAX_FILE_SIZE (bytes), SCAN_NETWORK,
// SCAN_ADDRESS.
func PolicyFromEnv(envFile string) (Policy, error) {
	p := DefaultPolicy()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return p, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if v := os.Getenv("SCAN_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.Enabled = b
		}
	}
	if v := os.Getenv("SCAN_PROVIDER"); v != "" {
		p.Provider = Provider(v)
	}
	if v := os.Getenv("SCAN_FAIL_OPEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			p.FailOpen = b
		}
	}
	if v := os.Getenv("SCAN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			p.Timeout = d
		}
	}
	if v := os.Getenv("SCAN_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			p.MaxFileSize = n
		}
	}
	if v := os.Getenv("SCAN_NETWORK"); v != "" {
		p.Network = v
	}
	if v := os.Getenv("SCAN_ADDRESS"); v != "" {
		p.Address = v
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks field ranges. An unrecognized Provider is deliberately not
// checked here; the orchestrator handles it with the no-op fallback so a
// misconfigured provider name never crashes the host application.
func (p Policy) Validate() error {
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", p.Timeout)
	}
	if p.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", p.MaxFileSize)
	}
	switch p.Network {
	case "tcp", "unix":
	default:
		return fmt.Errorf("network must be tcp or unix, got %q", p.Network)
	}
	if p.Provider == ProviderClamd && p.Address == "" {
		return fmt.Errorf("address is required for provider %q", ProviderClamd)
	}
	return nil
}
