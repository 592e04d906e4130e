package virusscan

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/quay/zlog"
)

// clamd wire protocol tokens. The "z" prefix selects NUL-terminated framing
// for both the command and the reply.
const (
	cmdInstream = "zINSTREAM\x00"
	cmdPing     = "zPING\x00"
	cmdVersion  = "zVERSION\x00"

	replyClean = "stream: OK"
	replyFound = "FOUND"
	replyError = "ERROR"
	replyPong  = "PONG"
)

// ClamdScanner speaks the clamd streaming-scan protocol over a byte-stream
// socket. Every call opens its own connection and tears it down before
// returning; there is no pooling, so one stalled daemon interaction cannot
// block or corrupt another.
//
// The zero value is not usable; construct with NewClamd. A ClamdScanner is
// immutable after construction and safe for concurrent use.
type ClamdScanner struct {
	network     string
	address     string
	timeout     time.Duration
	chunkSize   int
	maxFileSize int64
	dialer      *net.Dialer
}

var _ Scanner = (*ClamdScanner)(nil)

// NewClamd creates a scanner for a clamd daemon. network is "tcp" or "unix";
// address is host:port or a socket path respectively.
func NewClamd(network, address string, opts ...ClamdOption) (*ClamdScanner, error) {
	switch network {
	case "tcp", "unix":
	default:
		return nil, fmt.Errorf("network must be tcp or unix, got %q", network)
	}
	if address == "" {
		return nil, errors.New("address must not be empty")
	}

	c := &ClamdScanner{
		network:     network,
		address:     address,
		timeout:     DefaultTimeout,
		chunkSize:   DefaultChunkSize,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = &net.Dialer{}
	}
	return c, nil
}

// Provider implements Scanner.
func (c *ClamdScanner) Provider() Provider {
	return ProviderClamd
}

// Scan implements Scanner. Payloads over the size limit are skipped and
// reported clean without opening a connection.
func (c *ClamdScanner) Scan(ctx context.Context, data []byte, filename string) (*Verdict, error) {
	if skip := c.sizeGate(int64(len(data))); skip != nil {
		return skip, nil
	}
	return c.ScanReader(ctx, bytes.NewReader(data), int64(len(data)), filename)
}

// ScanReader streams size bytes from r to the daemon without buffering the
// whole payload. The size gate applies to the declared size.
func (c *ClamdScanner) ScanReader(ctx context.Context, r io.Reader, size int64, filename string) (*Verdict, error) {
	ctx = zlog.ContextWithValues(ctx, "component", "virusscan/ClamdScanner.ScanReader")
	if skip := c.sizeGate(size); skip != nil {
		return skip, nil
	}

	start := time.Now()
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, cmdInstream); err != nil {
		return nil, wrapNetErr("sending scan command", err)
	}
	if err := c.writeChunks(conn, r); err != nil {
		return nil, err
	}

	raw, err := readReply(conn)
	if err != nil {
		return nil, wrapNetErr("reading scan reply", err)
	}
	return c.parseReply(ctx, raw, filename, time.Since(start))
}

// Ping sends the liveness command on a fresh connection. A nil return means
// the daemon answered with its pong token inside the timeout.
func (c *ClamdScanner) Ping(ctx context.Context) error {
	raw, err := c.command(ctx, cmdPing)
	if err != nil {
		return err
	}
	if !strings.Contains(raw, replyPong) {
		return NewUnavailableError(fmt.Sprintf("unexpected ping reply: %q", raw), nil)
	}
	return nil
}

// HealthCheck implements Scanner on top of Ping.
func (c *ClamdScanner) HealthCheck(ctx context.Context) (bool, error) {
	if err := c.Ping(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Version returns the daemon's version banner.
func (c *ClamdScanner) Version(ctx context.Context) (string, error) {
	return c.command(ctx, cmdVersion)
}

// command runs a single fire-and-read exchange. Scans do not go through
// here; they interleave the chunked upload between command and reply.
func (c *ClamdScanner) command(ctx context.Context, cmd string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, cmd); err != nil {
		return "", wrapNetErr("sending command", err)
	}
	raw, err := readReply(conn)
	if err != nil {
		return "", wrapNetErr("reading reply", err)
	}
	return raw, nil
}

// sizeGate returns a skip verdict for oversize payloads, nil otherwise.
// Skipping is a deliberate non-error outcome, distinct from unavailability.
func (c *ClamdScanner) sizeGate(size int64) *Verdict {
	if size <= c.maxFileSize {
		return nil
	}
	return &Verdict{
		Clean:   true,
		Message: fmt.Sprintf("payload too large to scan (%d bytes)", size),
	}
}

// dial opens the per-call connection and arms its deadline. The deadline is
// the earlier of the configured timeout and the context deadline, and covers
// every subsequent write and read on the connection.
func (c *ClamdScanner) dial(ctx context.Context) (net.Conn, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := c.dialer.DialContext(dctx, c.network, c.address)
	if err != nil {
		return nil, wrapNetErr("connecting to scanner daemon", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, NewUnavailableError("arming socket deadline", err)
	}
	return conn, nil
}

// writeChunks uploads r as length-prefixed chunks followed by the zero-length
// terminator. An empty payload produces only the terminator.
func (c *ClamdScanner) writeChunks(conn net.Conn, r io.Reader) error {
	buf := make([]byte, c.chunkSize)
	var prefix [4]byte
	for {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			binary.BigEndian.PutUint32(prefix[:], uint32(n))
			if _, err := conn.Write(prefix[:]); err != nil {
				return wrapNetErr("sending chunk", err)
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				return wrapNetErr("sending chunk", err)
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return NewUnavailableError("reading payload", rerr)
		}
	}
	binary.BigEndian.PutUint32(prefix[:], 0)
	if _, err := conn.Write(prefix[:]); err != nil {
		return wrapNetErr("sending stream terminator", err)
	}
	return nil
}

// parseReply applies the daemon's response grammar, in order. Anything that
// matches none of the known shapes is treated as infected: an unparseable
// reply must never be read as permission to pass content through.
func (c *ClamdScanner) parseReply(ctx context.Context, raw, filename string, elapsed time.Duration) (*Verdict, error) {
	switch {
	case raw == replyClean:
		return &Verdict{
			Clean:    true,
			Message:  "no threats found",
			Duration: elapsed,
		}, nil
	case strings.HasPrefix(raw, "stream: ") && strings.HasSuffix(raw, replyFound):
		fields := strings.Fields(raw)
		threat := "unknown"
		if len(fields) >= 3 {
			threat = fields[1]
		}
		return &Verdict{
			Clean:    false,
			Threat:   threat,
			Message:  fmt.Sprintf("threat found: %s", threat),
			Duration: elapsed,
		}, nil
	case strings.Contains(raw, replyError):
		return nil, NewUnavailableError(fmt.Sprintf("daemon error reply: %s", raw), nil)
	default:
		zlog.Warn(ctx).
			Str("reply", raw).
			Str("filename", filename).
			Msg("unrecognized daemon reply, treating as infected")
		return &Verdict{
			Clean:    false,
			Threat:   fmt.Sprintf("unrecognized reply: %q", raw),
			Message:  fmt.Sprintf("daemon reply did not match protocol grammar: %q", raw),
			Duration: elapsed,
		}, nil
	}
}

// readReply accumulates bytes until the NUL terminator or connection close,
// then strips the terminator and surrounding whitespace.
func readReply(conn net.Conn) (string, error) {
	s, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(strings.TrimSuffix(s, "\x00")), nil
}

// wrapNetErr maps transport errors onto the unavailability taxonomy,
// distinguishing timeouts the way the daemon's operators will want to see
// them in logs.
func wrapNetErr(op string, err error) *UnavailableError {
	var nerr net.Error
	switch {
	case errors.As(err, &nerr) && nerr.Timeout():
		return NewUnavailableError(op+" timed out", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewUnavailableError(op+" timed out", err)
	case errors.Is(err, context.Canceled):
		return NewUnavailableError(op+" canceled", err)
	default:
		return NewUnavailableError(op+" failed", err)
	}
}
