// Package httpparse is the parser facade (spec §4.2, component C2): it
// wraps the automaton (C1) with the configuration surface callers actually
// construct against, while the event grammar itself lives in automaton.
package httpparse

import "github.com/httpflux/httpparse/automaton"

// Re-exported so callers of this package rarely need to import automaton
// directly for the common vocabulary (mode, lenient flags, callbacks).
type (
	Mode         = automaton.Mode
	LenientFlags = automaton.LenientFlags
	Callbacks    = automaton.Callbacks
	Signal       = automaton.Signal
	PayloadType  = automaton.PayloadType
	Action       = automaton.Action
	Observable   = automaton.Observable
	Method       = automaton.Method
)

const (
	MUndef   = automaton.MUndef
	MGet     = automaton.MGet
	MHead    = automaton.MHead
	MPost    = automaton.MPost
	MPut     = automaton.MPut
	MDelete  = automaton.MDelete
	MConnect = automaton.MConnect
	MOptions = automaton.MOptions
	MTrace   = automaton.MTrace
	MPatch   = automaton.MPatch
	MOther   = automaton.MOther
)

const (
	LenientHeaders                = automaton.LenientHeaders
	LenientChunkedLength          = automaton.LenientChunkedLength
	LenientKeepAlive              = automaton.LenientKeepAlive
	LenientTransferEncoding       = automaton.LenientTransferEncoding
	LenientVersion                = automaton.LenientVersion
	LenientDataAfterClose         = automaton.LenientDataAfterClose
	LenientOptionalLFAfterCR      = automaton.LenientOptionalLFAfterCR
	LenientOptionalCRBeforeLF     = automaton.LenientOptionalCRBeforeLF
	LenientOptionalCRLFAfterChunk = automaton.LenientOptionalCRLFAfterChunk
	LenientSpacesAfterChunkSize   = automaton.LenientSpacesAfterChunkSize
)

const (
	Request  = automaton.Request
	Response = automaton.Response
	Either   = automaton.Either
)

const (
	ActionProceed                     = automaton.ActionProceed
	ActionError                       = automaton.ActionError
	ActionPause                       = automaton.ActionPause
	ActionUserError                   = automaton.ActionUserError
	ActionAssumeNoBodyAndContinue     = automaton.ActionAssumeNoBodyAndContinue
	ActionAssumeNoBodyAndPauseUpgrade = automaton.ActionAssumeNoBodyAndPauseUpgrade
)

const (
	MessageBegin                = automaton.MessageBegin
	MessageComplete             = automaton.MessageComplete
	Reset                       = automaton.Reset
	URLComplete                 = automaton.URLComplete
	MethodComplete              = automaton.MethodComplete
	ProtocolComplete            = automaton.ProtocolComplete
	VersionComplete             = automaton.VersionComplete
	StatusComplete              = automaton.StatusComplete
	HeaderFieldComplete         = automaton.HeaderFieldComplete
	HeaderValueComplete         = automaton.HeaderValueComplete
	ChunkHeader                 = automaton.ChunkHeader
	ChunkComplete               = automaton.ChunkComplete
	ChunkExtensionNameComplete  = automaton.ChunkExtensionNameComplete
	ChunkExtensionValueComplete = automaton.ChunkExtensionValueComplete
)

const (
	PayloadURL                 = automaton.PayloadURL
	PayloadMethod              = automaton.PayloadMethod
	PayloadProtocol            = automaton.PayloadProtocol
	PayloadVersion             = automaton.PayloadVersion
	PayloadStatus              = automaton.PayloadStatus
	PayloadHeaderField         = automaton.PayloadHeaderField
	PayloadHeaderValue         = automaton.PayloadHeaderValue
	PayloadBody                = automaton.PayloadBody
	PayloadChunkExtensionName  = automaton.PayloadChunkExtensionName
	PayloadChunkExtensionValue = automaton.PayloadChunkExtensionValue
)

// Parser is the public, constructible entry point (spec §4.2 "Parser
// Facade (C2)").
type Parser struct {
	am *automaton.Automaton
}

// New creates a Parser per cfg (spec §4.2 "new(mode)").
func New(cfg Config) *Parser {
	am := automaton.New(cfg.Mode)
	am.SetLenientFlags(cfg.Lenient)
	return &Parser{am: am}
}

// SetCallbacks installs the handler table (spec §4.2 "setCallbacks").
func (p *Parser) SetCallbacks(cb Callbacks) {
	p.am.SetCallbacks(cb)
}

// SetLenientFlags applies the lenient set atomically (spec §4.2).
func (p *Parser) SetLenientFlags(f LenientFlags) {
	p.am.SetLenientFlags(f)
}

// LenientFlags returns the currently installed lenient set.
func (p *Parser) LenientFlags() LenientFlags {
	return p.am.LenientFlags()
}

// State returns the observable snapshot described in spec §3.
func (p *Parser) State() Observable {
	return p.am.State()
}

// Parse feeds a fragment into the parser (spec §4.2 "parse(bytes)"). It may
// invoke callbacks synchronously; data is only borrowed for the duration of
// this call and any callback it triggers.
func (p *Parser) Parse(data []byte) error {
	return p.am.Execute(data)
}

// Finish declares end-of-stream (spec §4.2 "finish()").
func (p *Parser) Finish() error {
	return p.am.Finish()
}

// Pause suspends the parser (spec §4.2 "pause()").
func (p *Parser) Pause() {
	p.am.Pause()
}

// Resume clears a plain pause (spec §4.2 "resume()").
func (p *Parser) Resume() {
	p.am.Resume()
}

// ResumeAfterUpgrade clears the upgrade-specific pause (spec §4.2
// "resumeAfterUpgrade()").
func (p *Parser) ResumeAfterUpgrade() {
	p.am.ResumeAfterUpgrade()
}

// Reset returns the parser to its initial state, preserving mode, callback
// table and lenient flags (spec §4.2 "reset()").
func (p *Parser) Reset() {
	p.am.Reset()
}

// Automaton exposes the underlying C1 instance for advanced callers (spec
// §6 "access to the underlying facade for advanced configuration").
func (p *Parser) Automaton() *automaton.Automaton {
	return p.am
}
