package virusscan

import (
	"net"
	"time"
)

// ClamdOption configures the clamd scanner.
type ClamdOption func(*ClamdScanner)

// WithTimeout sets the per-call deadline covering connection establishment,
// the chunked upload, and the reply read.
// Non-positive durations are ignored (no-op).
func WithTimeout(d time.Duration) ClamdOption {
	return func(c *ClamdScanner) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithChunkSize sets the upload chunk length. The default is a reasonable
// trade-off, not a protocol requirement; the daemon accepts any chunking.
// Non-positive values are ignored (no-op).
func WithChunkSize(n int) ClamdOption {
	return func(c *ClamdScanner) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithMaxFileSize sets the size gate above which payloads are skipped
// without contacting the daemon.
// Non-positive values are ignored (no-op).
func WithMaxFileSize(n int64) ClamdOption {
	return func(c *ClamdScanner) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithDialer sets a custom net.Dialer, for source-address pinning or
// keep-alive tuning. The scanner's own deadline discipline still applies.
func WithDialer(d *net.Dialer) ClamdOption {
	return func(c *ClamdScanner) {
		if d != nil {
			c.dialer = d
		}
	}
}
