package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// chunkSize stays well under clamd's default StreamMaxLength.
const chunkSize = 64 << 10

// ClamAVScanner talks to a clamd daemon over TCP ("host:3310") or a unix
// socket ("/var/run/clamav/clamd.sock").
type ClamAVScanner struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (s *ClamAVScanner) Name() string { return "clamav" }

func (s *ClamAVScanner) network() string {
	if strings.HasPrefix(s.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (s *ClamAVScanner) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conn, err := s.dialer.DialContext(ctx, s.network(), s.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping sends zPING and expects PONG.
func (s *ClamAVScanner) Ping(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: unexpected reply %q", ErrUnavailable, reply)
	}
	return nil
}

// Scan streams data with zINSTREAM. Replies look like "stream: OK",
// "stream: Eicar-Signature FOUND" or "... ERROR".
func (s *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) (Result, error) {
	result := Result{Scanner: s.Name()}

	conn, err := s.dial(ctx)
	if err != nil {
		return result, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var size [4]byte
	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		binary.BigEndian.PutUint32(size[:], uint32(end-off))
		if _, err := w.Write(size[:]); err != nil {
			return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if _, err := w.Write(data[off:end]); err != nil {
			return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := w.Flush(); err != nil {
		return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	verdict := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		verdict = strings.TrimSpace(reply[i+1:])
	}
	switch {
	case verdict == "OK":
		return result, nil
	case strings.HasSuffix(verdict, " FOUND"):
		result.Infected = true
		result.Threat = strings.TrimSuffix(verdict, " FOUND")
		return result, nil
	default:
		return result, fmt.Errorf("antivirus: scan of %s failed: %s", filename, reply)
	}
}

// readReply reads one null-terminated reply.
func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", err
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}
