package automaton

// Signal is a zero-payload parse event marking a boundary in the HTTP/1.x
// grammar (spec §3, "Parse Event").
type Signal uint8

const (
	MessageBegin Signal = iota
	MessageComplete
	Reset
	URLComplete
	MethodComplete
	ProtocolComplete
	VersionComplete
	StatusComplete
	HeaderFieldComplete
	HeaderValueComplete
	ChunkHeader
	ChunkComplete
	ChunkExtensionNameComplete
	ChunkExtensionValueComplete
)

func (s Signal) String() string {
	switch s {
	case MessageBegin:
		return "message-begin"
	case MessageComplete:
		return "message-complete"
	case Reset:
		return "reset"
	case URLComplete:
		return "url-complete"
	case MethodComplete:
		return "method-complete"
	case ProtocolComplete:
		return "protocol-complete"
	case VersionComplete:
		return "version-complete"
	case StatusComplete:
		return "status-complete"
	case HeaderFieldComplete:
		return "header-field-complete"
	case HeaderValueComplete:
		return "header-value-complete"
	case ChunkHeader:
		return "chunk-header"
	case ChunkComplete:
		return "chunk-complete"
	case ChunkExtensionNameComplete:
		return "chunk-extension-name-complete"
	case ChunkExtensionValueComplete:
		return "chunk-extension-value-complete"
	default:
		return "unknown-signal"
	}
}

// PayloadType identifies which logical field a payload fragment belongs to
// (spec §3, "Payload fragment").
type PayloadType uint8

const (
	PayloadURL PayloadType = iota
	PayloadMethod
	PayloadProtocol
	PayloadVersion
	PayloadStatus
	PayloadHeaderField
	PayloadHeaderValue
	PayloadBody
	PayloadChunkExtensionName
	PayloadChunkExtensionValue
)

func (t PayloadType) String() string {
	switch t {
	case PayloadURL:
		return "url"
	case PayloadMethod:
		return "method"
	case PayloadProtocol:
		return "protocol"
	case PayloadVersion:
		return "version"
	case PayloadStatus:
		return "status"
	case PayloadHeaderField:
		return "headerField"
	case PayloadHeaderValue:
		return "headerValue"
	case PayloadBody:
		return "body"
	case PayloadChunkExtensionName:
		return "chunkExtensionName"
	case PayloadChunkExtensionValue:
		return "chunkExtensionValue"
	default:
		return "unknown-payload"
	}
}

// Action is the value a callback returns to steer the automaton (spec §4.1,
// "Callback return discipline").
type Action uint8

const (
	// ActionProceed continues parsing normally.
	ActionProceed Action = iota
	// ActionError aborts parsing; a callback-specific error is surfaced.
	ActionError
	// ActionPause suspends parsing (signal callbacks only); subsequent
	// Execute calls surface a paused error until Resume.
	ActionPause
	// ActionUserError surfaces a user-labeled error (payload callbacks
	// only).
	ActionUserError
	// ActionAssumeNoBodyAndContinue is valid only from the
	// headers-complete callback: treat as though body length is zero,
	// proceed to the next message.
	ActionAssumeNoBodyAndContinue
	// ActionAssumeNoBodyAndPauseUpgrade is valid only from the
	// headers-complete callback: as above, but surface the
	// paused-upgrade terminal error afterwards.
	ActionAssumeNoBodyAndPauseUpgrade
)

// SignalFunc handles a zero-payload event.
type SignalFunc func(sig Signal) Action

// PayloadFunc handles a payload fragment. data is only valid for the
// duration of the call (spec §4.2, "Contracts").
type PayloadFunc func(t PayloadType, data []byte) Action

// HeadersCompleteFunc handles the headers-complete boundary; it may return
// ActionProceed, ActionError, ActionUserError or either of the two
// headers-complete-only actions above. ActionPause is rejected as an
// invalid action.
type HeadersCompleteFunc func() Action

// Callbacks is the handler table installed via SetCallbacks. Unset slots
// default to ActionProceed (spec §4.2).
type Callbacks struct {
	OnSignal          SignalFunc
	OnPayload         PayloadFunc
	OnHeadersComplete HeadersCompleteFunc
}

func (c Callbacks) signal(sig Signal) Action {
	if c.OnSignal == nil {
		return ActionProceed
	}
	return c.OnSignal(sig)
}

func (c Callbacks) payload(t PayloadType, data []byte) Action {
	if c.OnPayload == nil {
		return ActionProceed
	}
	return c.OnPayload(t, data)
}

func (c Callbacks) headersComplete() Action {
	if c.OnHeadersComplete == nil {
		return ActionProceed
	}
	return c.OnHeadersComplete()
}
