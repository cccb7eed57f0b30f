package server

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
)

// Telnet protocol constants.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	SE   byte = 240 // Sub-negotiation End
	GA   byte = 249 // Go Ahead

	// Telnet options
	OptEcho byte = 1
	OptSGA  byte = 3
)

const maxLineLen = 512

// TelnetConn wraps a raw TCP connection with just enough telnet
// protocol handling for a line-oriented BBS: IAC sequences are stripped
// from the stream and echo can be suppressed for password prompts.
type TelnetConn struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewTelnetConn wraps a raw TCP connection.
func NewTelnetConn(conn net.Conn) *TelnetConn {
	return &TelnetConn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 1024),
	}
}

// Negotiate sends the initial option negotiations: the client keeps
// local echo and line editing, we suppress go-ahead.
func (tc *TelnetConn) Negotiate() error {
	if err := tc.sendCommand(WONT, OptEcho); err != nil {
		return err
	}
	if err := tc.sendCommand(WILL, OptSGA); err != nil {
		return err
	}
	return tc.sendCommand(DO, OptSGA)
}

// SetEcho toggles client-side echo. WILL ECHO tells the client the
// server handles echo; we then echo nothing, which hides passwords.
func (tc *TelnetConn) SetEcho(on bool) error {
	if on {
		return tc.sendCommand(WONT, OptEcho)
	}
	return tc.sendCommand(WILL, OptEcho)
}

// sendCommand sends a 3-byte IAC command sequence.
func (tc *TelnetConn) sendCommand(cmd, option byte) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	_, err := tc.conn.Write([]byte{IAC, cmd, option})
	return err
}

// readByte reads a single data byte, consuming IAC sequences.
func (tc *TelnetConn) readByte() (byte, error) {
	for {
		b, err := tc.reader.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != IAC {
			return b, nil
		}

		cmd, err := tc.reader.ReadByte()
		if err != nil {
			return 0, err
		}

		switch cmd {
		case IAC:
			// Escaped 0xFF data byte.
			return IAC, nil
		case WILL, WONT:
			if _, err := tc.reader.ReadByte(); err != nil {
				return 0, err
			}
		case DO, DONT:
			opt, err := tc.reader.ReadByte()
			if err != nil {
				return 0, err
			}
			if cmd == DO && opt != OptEcho && opt != OptSGA {
				_ = tc.sendCommand(WONT, opt)
			}
		case SB:
			if err := tc.skipSubNegotiation(); err != nil {
				return 0, err
			}
		case GA:
			// Ignore.
		default:
			// Unknown two-byte command, skip.
		}
	}
}

// skipSubNegotiation discards bytes until IAC SE.
func (tc *TelnetConn) skipSubNegotiation() error {
	const maxSubnegLen = 1024
	read := 0
	for {
		b, err := tc.reader.ReadByte()
		if err != nil {
			return fmt.Errorf("subneg read: %w", err)
		}
		if b == IAC {
			next, err := tc.reader.ReadByte()
			if err != nil {
				return fmt.Errorf("subneg read: %w", err)
			}
			if next == SE {
				return nil
			}
		}
		read++
		if read > maxSubnegLen {
			return fmt.Errorf("subneg too long")
		}
	}
}

// ReadLine reads one line of input, stripping telnet protocol and line
// endings. Input past maxLineLen is discarded until the line ends.
func (tc *TelnetConn) ReadLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := tc.readByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\n':
			return sb.String(), nil
		case '\r', 0:
			// CR and the NUL some clients send after it.
		case 8, 127:
			// Backspace from clients without local line editing.
			s := sb.String()
			if len(s) > 0 {
				sb.Reset()
				sb.WriteString(s[:len(s)-1])
			}
		default:
			if sb.Len() < maxLineLen {
				sb.WriteByte(b)
			}
		}
	}
}

// Write sends data to the client, escaping any literal 0xFF bytes.
func (tc *TelnetConn) Write(p []byte) (int, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	written := 0
	for i, b := range p {
		if b == IAC {
			if i > written {
				if _, err := tc.conn.Write(p[written:i]); err != nil {
					return written, err
				}
			}
			if _, err := tc.conn.Write([]byte{IAC, IAC}); err != nil {
				return i, err
			}
			written = i + 1
		}
	}
	if written < len(p) {
		if _, err := tc.conn.Write(p[written:]); err != nil {
			return written, err
		}
	}
	return len(p), nil
}

// WriteString sends a string to the client.
func (tc *TelnetConn) WriteString(s string) error {
	_, err := tc.Write([]byte(s))
	return err
}

// Close closes the underlying connection.
func (tc *TelnetConn) Close() error {
	return tc.conn.Close()
}

// RemoteAddr returns the remote address of the connection.
func (tc *TelnetConn) RemoteAddr() net.Addr {
	return tc.conn.RemoteAddr()
}

var _ io.WriteCloser = (*TelnetConn)(nil)
