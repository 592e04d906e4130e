// Package testutil provides a scriptable fake clamd daemon for tests.
package testutil

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// ReplyFunc produces the daemon's scan reply for a received payload. The
// returned string is sent verbatim, NUL-terminated.
type ReplyFunc func(payload []byte) string

// ReplyOK reports every payload clean.
func ReplyOK(_ []byte) string { return "stream: OK" }

// ReplyFound reports every payload infected with the given signature name.
func ReplyFound(name string) ReplyFunc {
	return func(_ []byte) string { return fmt.Sprintf("stream: %s FOUND", name) }
}

// ReplyError reports a daemon-side failure for every payload.
func ReplyError(_ []byte) string { return "INSTREAM size limit exceeded. ERROR" }

// ReplyRaw sends a fixed reply regardless of payload.
func ReplyRaw(s string) ReplyFunc {
	return func(_ []byte) string { return s }
}

// Server is a fake clamd listening on a loopback TCP socket. It understands
// the zINSTREAM, zPING, and zVERSION commands, one command per connection,
// and records every streamed payload for framing assertions.
type Server struct {
	// Silent, when true, accepts connections and consumes input but never
	// writes a reply, for read-timeout tests.
	Silent bool
	// PingReply overrides the default "PONG" answer to zPING.
	PingReply string
	// VersionReply is the answer to zVERSION.
	VersionReply string

	reply ReplyFunc
	lis   net.Listener
	wg    sync.WaitGroup
	conns atomic.Int64

	mu       sync.Mutex
	payloads [][]byte
}

// NewServer starts a fake daemon. reply scripts the scan verdict; nil means
// always clean. The server is shut down via t.Cleanup.
func NewServer(t *testing.T, reply ReplyFunc) *Server {
	t.Helper()
	if reply == nil {
		reply = ReplyOK
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s := &Server{
		PingReply:    "PONG",
		VersionReply: "ClamAV 1.4.0/test",
		reply:        reply,
		lis:          lis,
	}
	s.wg.Add(1)
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

// Addr returns the host:port the fake daemon listens on.
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Close stops the listener and waits for in-flight connections.
func (s *Server) Close() {
	s.lis.Close()
	s.wg.Wait()
}

// Conns reports how many connections have been accepted.
func (s *Server) Conns() int64 {
	return s.conns.Load()
}

// Payloads returns copies of every payload streamed so far.
func (s *Server) Payloads() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.payloads))
	for i, p := range s.payloads {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.lis.Accept()
		if err != nil {
			return
		}
		s.conns.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	br := bufio.NewReader(conn)
	cmd, err := br.ReadString(0)
	if err != nil {
		return
	}
	cmd = strings.TrimSuffix(cmd, "\x00")

	switch cmd {
	case "zINSTREAM":
		payload, err := readStream(br)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.payloads = append(s.payloads, payload)
		s.mu.Unlock()
		s.answer(conn, br, s.reply(payload))
	case "zPING":
		s.answer(conn, br, s.PingReply)
	case "zVERSION":
		s.answer(conn, br, s.VersionReply)
	}
}

// answer writes the NUL-terminated reply, or holds the connection open
// without replying in Silent mode until the client gives up.
func (s *Server) answer(conn net.Conn, br *bufio.Reader, reply string) {
	if s.Silent {
		io.Copy(io.Discard, br) //nolint:errcheck
		return
	}
	io.WriteString(conn, reply+"\x00") //nolint:errcheck
}

// readStream consumes length-prefixed chunks up to the zero terminator and
// returns the reassembled payload.
func readStream(r io.Reader) ([]byte, error) {
	var payload []byte
	var prefix [4]byte
	for {
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			return nil, err
		}
		n := binary.BigEndian.Uint32(prefix[:])
		if n == 0 {
			return payload, nil
		}
		if n > 1<<20 {
			return nil, errors.New("chunk too large")
		}
		chunk := make([]byte, n)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, err
		}
		payload = append(payload, chunk...)
	}
}
