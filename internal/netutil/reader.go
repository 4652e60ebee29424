// Package netutil is the ambient connection-plumbing collaborator named
// but not detailed by spec §1 ("no I/O ownership... a caller owns the
// connection and feeds bytes in"): a small read loop that owns a net.Conn,
// feeds it into a messages.Parser, and reports progress/errors via
// zerolog, the way moul-go-agent's Sender wires a *zerolog.Logger through
// its background loop.
package netutil

import (
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/httpflux/httpparse/message"
	"github.com/httpflux/httpparse/messages"
)

// Reader pumps bytes read off a net.Conn into a messages.Parser and
// reports each completed message to a callback. It owns no parsing state
// of its own; all framing lives in the wrapped Parser.
type Reader struct {
	conn net.Conn
	p    *messages.Parser
	buf  []byte
	log  *zerolog.Logger
}

// New wraps conn and p. bufSize sizes the read buffer; 4096 is used if
// bufSize <= 0.
func New(conn net.Conn, p *messages.Parser, bufSize int, log *zerolog.Logger) *Reader {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &Reader{conn: conn, p: p, buf: make([]byte, bufSize), log: log}
}

// Run reads from the connection until it errors or is closed, invoking on
// for every message the parser completes. It returns the terminal error:
// io.EOF is reported as nil (a clean close), any other read or parse error
// is returned as-is.
func (r *Reader) Run(on func(message.Either)) error {
	log := r.log.With().Str("parser_id", r.p.ID().String()).Logger()
	for {
		n, err := r.conn.Read(r.buf)
		if n > 0 {
			msgs, perr := r.p.Parse(r.buf[:n])
			for _, m := range msgs {
				on(m)
			}
			if perr != nil {
				log.Error().Err(perr).Msg("httpparse: parse error, closing connection")
				return perr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				msgs, ferr := r.p.Finish()
				for _, m := range msgs {
					on(m)
				}
				if ferr != nil {
					log.Error().Err(ferr).Msg("httpparse: finish error at EOF")
					return ferr
				}
				log.Debug().Msg("httpparse: connection closed cleanly")
				return nil
			}
			log.Warn().Err(err).Msg("httpparse: connection read error")
			return err
		}
	}
}
