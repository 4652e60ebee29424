// Package messages is the thin driver (spec §4.4, component C4): it feeds
// bytes into the facade (C2), collects messages materialized by the
// builder (C3), and surfaces them as a batch per call or via a streaming
// handler.
package messages

import (
	"github.com/google/uuid"

	"github.com/httpflux/httpparse"
	"github.com/httpflux/httpparse/errs"
	"github.com/httpflux/httpparse/message"
)

// Handler is invoked synchronously for each message, before it is returned
// to the caller of Parse/Finish (spec §4.4 "messageHandler"). Returning a
// non-nil error latches HPE_CB_MESSAGE_COMPLETE for all subsequent calls
// (spec §4.4 "a throwing handler causes parse to surface a
// callback-complete error"). Returning pause=true suspends the underlying
// parser: the next Parse/Finish call surfaces HPE_PAUSED until Resume.
type Handler func(message.Either) (pause bool, err error)

// Parser drives a httpparse.Parser and a message.Builder together.
type Parser struct {
	id      uuid.UUID
	facade  *httpparse.Parser
	builder *message.Builder
	handler Handler
	sticky  error
}

// New creates a Parser for mode (spec §4.4 "constructor(message-type)"). It
// is assigned a random instance ID [EXPANSION], stable for the parser's
// lifetime (including across Reset), so a caller correlating log lines
// across many concurrently-held parsers (one per connection) can tell them
// apart without threading its own identifier through.
func New(mode httpparse.Mode) *Parser {
	facade := httpparse.New(httpparse.Config{Mode: mode})
	builder := message.NewBuilder(facade.State)
	facade.SetCallbacks(builder.Callbacks())
	return &Parser{id: uuid.New(), facade: facade, builder: builder}
}

// ID returns this parser instance's identifier [EXPANSION].
func (p *Parser) ID() uuid.UUID {
	return p.id
}

// SetMessageHandler installs h, replacing any previous handler.
func (p *Parser) SetMessageHandler(h Handler) {
	p.handler = h
}

// SetLenientFlags applies the lenient set atomically.
func (p *Parser) SetLenientFlags(f httpparse.LenientFlags) {
	p.facade.SetLenientFlags(f)
}

// LenientFlags returns the currently installed lenient set.
func (p *Parser) LenientFlags() httpparse.LenientFlags {
	return p.facade.LenientFlags()
}

// State returns the facade's observable snapshot.
func (p *Parser) State() httpparse.Observable {
	return p.facade.State()
}

// Facade exposes the underlying C2 parser for advanced configuration
// (spec §6 "access to the underlying facade for advanced configuration").
func (p *Parser) Facade() *httpparse.Parser {
	return p.facade
}

// Pause suspends the parser; the next Parse/Finish call surfaces
// HPE_PAUSED until Resume clears it.
func (p *Parser) Pause() {
	p.facade.Pause()
}

// Resume clears a plain pause.
func (p *Parser) Resume() {
	p.facade.Resume()
}

// ResumeAfterUpgrade clears an upgrade-specific pause.
func (p *Parser) ResumeAfterUpgrade() {
	p.facade.ResumeAfterUpgrade()
}

// Reset returns the parser (and builder) to their initial state, clearing
// any latched handler error.
func (p *Parser) Reset() {
	p.facade.Reset()
	p.builder.Drain()
	p.sticky = nil
}

// Parse feeds data and returns every message completed during this call,
// in completion order, up to and including the one that triggered a
// handler pause or error (spec §4.4 "parse(bytes) -> ordered
// sequence<Message>").
func (p *Parser) Parse(data []byte) ([]message.Either, error) {
	if p.sticky != nil {
		return nil, p.sticky
	}
	err := p.facade.Parse(data)
	out, herr := p.drain()
	if herr != nil {
		p.sticky = herr
		return out, herr
	}
	return out, err
}

// Finish declares end-of-stream and returns any messages completed as a
// result (e.g. a close-delimited body reaching EOF).
func (p *Parser) Finish() ([]message.Either, error) {
	if p.sticky != nil {
		return nil, p.sticky
	}
	err := p.facade.Finish()
	out, herr := p.drain()
	if herr != nil {
		p.sticky = herr
		return out, herr
	}
	return out, err
}

// drain hands every queued message to the handler (if any) before
// returning it to the caller, pausing or latching an error on the first
// request to do so (spec §4.4: handler runs synchronously before a
// message is returned to the caller).
func (p *Parser) drain() ([]message.Either, error) {
	msgs := p.builder.Drain()
	if p.handler == nil {
		return msgs, nil
	}
	for i, m := range msgs {
		pause, err := p.handler(m)
		if err != nil {
			return msgs[:i+1], errs.New(errs.CodeCBMessageComplete, err.Error())
		}
		if pause {
			p.facade.Pause()
			return msgs[:i+1], nil
		}
	}
	return msgs, nil
}
