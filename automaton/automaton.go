// Package automaton implements the byte-driven HTTP/1.x grammar state
// machine (spec §4.1, component C1): it recognizes request-line /
// status-line / header-section / body-framing grammar and emits Signal and
// payload-fragment events through an installed Callbacks table, without
// retaining caller-owned bytes beyond the scope of a single callback.
package automaton

import (
	"fmt"

	"github.com/httpflux/httpparse/errs"
)

// mstate is the coarse top-level parsing state (spec §4.1, "State machine
// (coarse)").
type mstate uint8

const (
	stateFirstLine mstate = iota
	stateHeaders
	stateBodyDecide
	stateBodyNone
	stateBodyCLen
	stateBodyChunkSize
	stateBodyChunkExt
	stateBodyChunkData
	stateBodyChunkCRLF
	stateBodyTrailer
	stateBodyEOF
	stateMessageDone
	stateError
)

// Automaton is a single HTTP/1.x parser instance (spec §3, "Parser (C2)"
// register set, minus the facade-only bookkeeping which lives in the
// parent httpparse.Parser).
type Automaton struct {
	mode    Mode
	cb      Callbacks
	lenient LenientFlags

	state mstate

	// Either-mode disambiguation (spec §9 "Mode tagging"); the lookahead
	// probe buffer itself lives in fl (firstLineState) since it is only
	// ever touched while in stateFirstLine.
	resolved  bool
	isRequest bool

	// sticky terminal error and the two resumable suspensions.
	fatal         *errs.Error
	paused        bool
	pausedUpgrade bool

	// observable register set (spec §3 "Parser Observable State").
	httpMajor, httpMinor uint8
	method               Method
	statusCode           uint16
	upgrade              bool
	upgradeProtocol      UpgradeProtocol
	transferEncoding     TransferEncoding
	contentLength        uint64
	hasContentLength     bool
	shouldKeepAlive      bool
	messageNeedsEOF      bool

	// forcedNoBody/pendingPauseUpgrade are set by finishHeaders/decideBody;
	// decideBody consumes forcedNoBody, and the stateBodyNone handler in
	// Execute consumes pendingPauseUpgrade.
	forcedNoBody        bool
	pendingPauseUpgrade bool

	// carry holds bytes a step left unconsumed at the end of the previous
	// Execute call (a CR whose LF had not arrived yet); they are fed again
	// ahead of the next call's data.
	carry []byte

	fl  firstLineState
	hdr headersState
	bd  bodyState

	// messageStarted tracks whether MessageBegin has already fired for
	// the in-progress message (invariant 2: exactly one Reset between
	// two MessageComplete signals).
	messageStarted bool
	sawAnyMessage  bool
}

// New creates a fresh Automaton in the given mode (spec §4.2 "new(mode)").
func New(mode Mode) *Automaton {
	am := &Automaton{mode: mode}
	am.resetMessage()
	return am
}

// SetCallbacks installs the handler table (spec §4.2 "setCallbacks").
func (am *Automaton) SetCallbacks(cb Callbacks) {
	am.cb = cb
}

// SetLenientFlags applies the lenient set atomically (spec §4.2).
func (am *Automaton) SetLenientFlags(f LenientFlags) {
	am.lenient = f
}

// LenientFlags returns the currently installed lenient set.
func (am *Automaton) LenientFlags() LenientFlags {
	return am.lenient
}

// Observable is the read-only state snapshot (spec §3 "Parser Observable
// State").
type Observable struct {
	Mode            Mode
	HTTPMajor       uint8
	HTTPMinor       uint8
	Method          Method
	StatusCode      uint16
	StatusName      string
	Upgrade         bool
	ContentLength   uint64
	ShouldKeepAlive bool
	MessageNeedsEOF bool
}

// State returns the observable snapshot.
func (am *Automaton) State() Observable {
	mode := am.mode
	if am.mode == Either && am.resolved {
		if am.isRequest {
			mode = Request
		} else {
			mode = Response
		}
	}
	return Observable{
		Mode:            mode,
		HTTPMajor:       am.httpMajor,
		HTTPMinor:       am.httpMinor,
		Method:          am.method,
		StatusCode:      am.statusCode,
		StatusName:      statusText(am.statusCode),
		Upgrade:         am.upgrade,
		ContentLength:   am.contentLength,
		ShouldKeepAlive: am.shouldKeepAlive,
		MessageNeedsEOF: am.messageNeedsEOF,
	}
}

// Reset returns the automaton to its initial state, preserving mode,
// callbacks and lenient flags (spec §4.2 "reset()").
func (am *Automaton) Reset() {
	mode, cb, lenient := am.mode, am.cb, am.lenient
	*am = Automaton{mode: mode, cb: cb, lenient: lenient}
	am.resetMessage()
}

func (am *Automaton) resetMessage() {
	am.state = stateFirstLine
	am.resolved = am.mode != Either
	am.isRequest = am.mode == Request
	am.httpMajor, am.httpMinor = 0, 0
	am.method = MUndef
	am.statusCode = 0
	am.upgrade = false
	am.upgradeProtocol = UpgradeNone
	am.transferEncoding = TrEncNone
	am.contentLength = 0
	am.hasContentLength = false
	am.shouldKeepAlive = false
	am.messageNeedsEOF = false
	am.forcedNoBody = false
	am.pendingPauseUpgrade = false
	am.fl = firstLineState{}
	am.hdr = headersState{}
	am.bd = bodyState{}
	am.messageStarted = false
}

// Pause suspends the automaton (spec §4.2 "pause()"). Subsequent Execute
// calls surface HPE_PAUSED until Resume.
func (am *Automaton) Pause() {
	if am.fatal == nil {
		am.paused = true
	}
}

// Resume clears a plain pause (spec §4.2 "resume()").
func (am *Automaton) Resume() {
	am.paused = false
}

// ResumeAfterUpgrade clears the upgrade-specific pause (spec §4.2
// "resumeAfterUpgrade()").
func (am *Automaton) ResumeAfterUpgrade() {
	am.pausedUpgrade = false
	am.paused = false
}

// Execute feeds data into the automaton (spec §4.2 "parse(bytes)"). It may
// invoke callbacks synchronously. It fully consumes data: any bytes that
// belong to a field spanning past the end of data are forwarded as a
// partial payload fragment and the automaton remembers internally that the
// field is still open; callers do not need to re-present old bytes.
func (am *Automaton) Execute(data []byte) error {
	if am.fatal != nil {
		return am.fatal
	}
	if am.pausedUpgrade {
		return errs.New(errs.CodePausedUpgrade, "upgrade pause active")
	}
	if am.paused {
		return errs.New(errs.CodePaused, "parser paused")
	}
	if len(am.carry) > 0 {
		data = append(am.carry, data...)
		am.carry = nil
	}

	i := 0
	for {
		if am.state == stateError {
			return am.fatal
		}
		if i > len(data) {
			panic(fmt.Sprintf("automaton: cursor %d past data len %d", i, len(data)))
		}
		var (
			next      int
			needMore  bool
			terminate bool
		)
		switch am.state {
		case stateFirstLine:
			next, needMore = am.stepFirstLine(data, i)
		case stateHeaders:
			next, needMore = am.stepHeaders(data, i)
		case stateBodyDecide:
			am.decideBody()
			next = i
		case stateBodyNone:
			am.fireSignal(MessageComplete)
			if am.fatal != nil {
				return am.fatal
			}
			if am.pendingPauseUpgrade {
				am.pendingPauseUpgrade = false
				am.pausedUpgrade = true
			}
			am.state = stateMessageDone
			next = i
		case stateBodyCLen:
			next, needMore = am.stepBodyCLen(data, i)
		case stateBodyEOF:
			next, needMore = am.stepBodyEOF(data, i)
		case stateBodyChunkSize, stateBodyChunkExt:
			next, needMore = am.stepChunkHeader(data, i)
		case stateBodyChunkData:
			next, needMore = am.stepChunkData(data, i)
		case stateBodyChunkCRLF:
			next, needMore = am.stepChunkCRLF(data, i)
		case stateBodyTrailer:
			next, needMore = am.stepTrailer(data, i)
		case stateMessageDone:
			// The reset for the finished message fires only once bytes of
			// a following message arrive, so the observable registers keep
			// describing the finished message until then.
			if i >= len(data) {
				return nil
			}
			am.fireSignal(Reset)
			if am.fatal != nil {
				return am.fatal
			}
			keepGoing := am.shouldKeepAlive || am.lenient.Has(LenientKeepAlive)
			am.resetMessage()
			if !keepGoing {
				// connection is done; any further bytes are unexpected
				// unless the host tolerates them explicitly.
				if i < len(data) {
					if am.lenient.Has(LenientDataAfterClose) {
						return nil
					}
					am.fail(errs.CodeClosedConnection, "data after close-terminated message")
					return am.fatal
				}
			}
			next = i
		default:
			panic("automaton: unhandled state")
		}
		if am.fatal != nil {
			am.state = stateError
			return am.fatal
		}
		if am.pausedUpgrade {
			return errs.New(errs.CodePausedUpgrade, "upgrade pause active")
		}
		if am.paused {
			return errs.New(errs.CodePaused, "parser paused")
		}
		i = next
		if needMore {
			if i < len(data) {
				am.carry = append([]byte(nil), data[i:]...)
			}
			return nil
		}
		if terminate {
			return nil
		}
		if i >= len(data) && am.state != stateBodyDecide && am.state != stateMessageDone && am.state != stateBodyNone {
			return nil
		}
	}
}

// Finish declares end-of-stream (spec §4.2 "finish()").
func (am *Automaton) Finish() error {
	if am.fatal != nil {
		return am.fatal
	}
	if am.paused || am.pausedUpgrade {
		return am.Execute(nil)
	}
	switch am.state {
	case stateFirstLine:
		if !am.fl.started() {
			return nil // clean EOF between messages
		}
		am.fail(errs.CodeInvalidEOFState, "EOF mid first-line")
		return am.fatal
	case stateBodyEOF:
		am.bd.noMoreData = true
		if err := am.Execute(nil); err != nil {
			return err
		}
		return nil
	case stateMessageDone:
		return am.Execute(nil)
	default:
		am.fail(errs.CodeInvalidEOFState, "EOF mid message")
		return am.fatal
	}
}

func (am *Automaton) fail(code errs.Code, reason string) {
	if am.fatal == nil {
		am.fatal = errs.New(code, reason)
	}
	am.state = stateError
}

// fireSignal invokes the signal callback and applies its Action.
func (am *Automaton) fireSignal(sig Signal) {
	if sig == MessageBegin {
		am.messageStarted = true
		am.sawAnyMessage = true
	}
	act := am.cb.signal(sig)
	switch act {
	case ActionProceed:
	case ActionError:
		am.fail(signalErrCode(sig), "callback rejected "+sig.String())
	case ActionPause:
		am.paused = true
	default:
		am.fail(signalErrCode(sig), "invalid action from "+sig.String()+" callback")
	}
}

// firePayload invokes the payload callback and applies its Action. Returns
// false if the automaton should stop (error already recorded).
func (am *Automaton) firePayload(t PayloadType, data []byte) bool {
	if len(data) == 0 {
		return true
	}
	act := am.cb.payload(t, data)
	switch act {
	case ActionProceed:
		return true
	case ActionError:
		am.fail(payloadErrCode(t), "callback rejected "+t.String()+" payload")
		return false
	case ActionUserError:
		am.fail(errs.CodeUser, "user error on "+t.String()+" payload")
		return false
	default:
		am.fail(payloadErrCode(t), "invalid action from "+t.String()+" payload callback")
		return false
	}
}

func signalErrCode(sig Signal) errs.Code {
	switch sig {
	case MessageBegin:
		return errs.CodeCBMessageBegin
	case MessageComplete:
		return errs.CodeCBMessageComplete
	case Reset:
		return errs.CodeCBReset
	case URLComplete:
		return errs.CodeCBURL
	case MethodComplete:
		return errs.CodeCBMethod
	case ProtocolComplete:
		return errs.CodeCBProtocol
	case VersionComplete:
		return errs.CodeCBVersion
	case StatusComplete:
		return errs.CodeCBStatus
	case HeaderFieldComplete:
		return errs.CodeCBHeaderField
	case HeaderValueComplete:
		return errs.CodeCBHeaderValue
	case ChunkHeader:
		return errs.CodeCBChunkHeader
	case ChunkComplete:
		return errs.CodeCBChunkComplete
	case ChunkExtensionNameComplete:
		return errs.CodeCBChunkExtensionName
	case ChunkExtensionValueComplete:
		return errs.CodeCBChunkExtensionValue
	default:
		return errs.CodeCBMessageComplete
	}
}

func payloadErrCode(t PayloadType) errs.Code {
	switch t {
	case PayloadURL:
		return errs.CodeCBURL
	case PayloadMethod:
		return errs.CodeCBMethod
	case PayloadProtocol:
		return errs.CodeCBProtocol
	case PayloadVersion:
		return errs.CodeCBVersion
	case PayloadStatus:
		return errs.CodeCBStatus
	case PayloadHeaderField:
		return errs.CodeCBHeaderField
	case PayloadHeaderValue:
		return errs.CodeCBHeaderValue
	case PayloadBody:
		return errs.CodeCBBody
	case PayloadChunkExtensionName:
		return errs.CodeCBChunkExtensionName
	case PayloadChunkExtensionValue:
		return errs.CodeCBChunkExtensionValue
	default:
		return errs.CodeCBBody
	}
}
