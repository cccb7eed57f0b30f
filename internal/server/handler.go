package server

import (
	"errors"
	"io"
	"log"
	"net"

	"github.com/google/uuid"

	"github.com/Brandon541/BBS/internal/ratelimit"
	"github.com/Brandon541/BBS/internal/session"
)

const clearScreen = "\x1b[2J\x1b[H"

// Handler bridges telnet connections to the session manager. Each
// connection gets its own session keyed by a fresh UUID.
type Handler struct {
	manager *session.Manager
	limiter *ratelimit.Limiter
}

func NewHandler(manager *session.Manager, limiter *ratelimit.Limiter) *Handler {
	return &Handler{manager: manager, limiter: limiter}
}

// Handle runs one connection: banner, then a read-dispatch-render loop
// until the session ends or the client disconnects.
func (h *Handler) Handle(tc *TelnetConn) {
	defer tc.Close()

	host := remoteHost(tc.RemoteAddr())

	// Locked-out addresses are refused before a session exists.
	if h.limiter.IsLimited(host) {
		_ = tc.WriteString("Rate limited. Try again later.\r\n")
		return
	}

	if err := tc.Negotiate(); err != nil {
		log.Printf("Telnet negotiation with %s: %v", host, err)
		return
	}

	id := uuid.NewString()
	defer h.manager.End(id)

	log.Printf("Connection from %s (session %s)", host, id)

	echoOff := false

	resp := h.manager.Dispatch(id, host, "")
	if err := h.render(tc, resp); err != nil {
		return
	}
	echoOff = h.applyEcho(tc, resp, echoOff)

	for !resp.SessionEnded {
		line, err := tc.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Read from %s: %v", host, err)
			}
			return
		}

		if echoOff {
			// The client saw nothing while typing; move past the prompt.
			_ = tc.WriteString("\r\n")
		}

		resp = h.manager.Dispatch(id, host, line)
		if err := h.render(tc, resp); err != nil {
			return
		}
		echoOff = h.applyEcho(tc, resp, echoOff)
	}

	log.Printf("Session %s ended", id)
	h.manager.EvictExpired()
}

// applyEcho reconciles the client's echo state with the response's
// password-field flag.
func (h *Handler) applyEcho(tc *TelnetConn, resp *session.Response, echoOff bool) bool {
	if resp.PasswordField != echoOff {
		_ = tc.SetEcho(!resp.PasswordField)
	}
	return resp.PasswordField
}

func (h *Handler) render(tc *TelnetConn, resp *session.Response) error {
	if resp.ClearScreen {
		if err := tc.WriteString(clearScreen); err != nil {
			return err
		}
	}
	for _, line := range resp.Output {
		if err := tc.WriteString(line + "\r\n"); err != nil {
			return err
		}
	}
	if resp.Prompt != "" {
		if err := tc.WriteString(resp.Prompt + " "); err != nil {
			return err
		}
	}
	return nil
}

func remoteHost(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
