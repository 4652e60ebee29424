package automaton

import (
	"github.com/httpflux/httpparse/errs"
	"github.com/intuitivelabs/bytescase"
)

// hdrFieldStage is the sub-state for scanning one header-field-line at a
// time, and for recognizing the blank line that ends the header section
// (ported in spirit from the teacher's HdrLst/ParseHeaders, parse_headers.go).
type hdrFieldStage uint8

const (
	hfStart hdrFieldStage = iota // start of a header line, or the blank terminator
	hfName
	hfAfterColon
	hfValue
	hfLineEnd
)

// headerSemantic classifies a header field name that the automaton must
// track to compute body framing and connection state (spec §4.2 "Header
// classification"). All other fields are forwarded as payload fragments
// without being retained.
type headerSemantic uint8

const (
	semOther headerSemantic = iota
	semContentLength
	semTransferEncoding
	semConnection
	semUpgrade
	semHost
)

type headersState struct {
	stage    hdrFieldStage
	nameBuf  []byte
	semantic headerSemantic
	valueBuf []byte

	connClose      bool
	connKeepAlive  bool
	connUpgradeTok bool
	sawHost        bool
}

func classifyFieldName(name []byte) headerSemantic {
	switch len(name) {
	case 4:
		if bytescase.CmpEq(name, []byte("Host")) {
			return semHost
		}
	case 10:
		if bytescase.CmpEq(name, []byte("Connection")) {
			return semConnection
		}
	case 7:
		if bytescase.CmpEq(name, []byte("Upgrade")) {
			return semUpgrade
		}
	case 14:
		if bytescase.CmpEq(name, []byte("Content-Length")) {
			return semContentLength
		}
	case 17:
		if bytescase.CmpEq(name, []byte("Transfer-Encoding")) {
			return semTransferEncoding
		}
	}
	return semOther
}

// stepHeaders scans one or more header-field-lines, stopping either for
// more data or once it reaches the blank line that ends the header section
// (at which point it transitions to stateBodyDecide and returns).
func (am *Automaton) stepHeaders(data []byte, i int) (int, bool) {
	for {
		switch am.hdr.stage {
		case hfStart:
			if i < len(data) && (data[i] == '\r' || data[i] == '\n') {
				end, _, st := skipCRLF(data, i, am.lenient)
				if st == statusMoreBytes {
					return i, true
				}
				if st != statusOK {
					am.fail(errs.CodeInvalidHeaderToken, "malformed end-of-headers terminator")
					return i, false
				}
				return am.finishHeaders(end)
			}
			if i >= len(data) {
				return i, true
			}
			am.hdr.nameBuf = am.hdr.nameBuf[:0]
			am.hdr.semantic = semOther
			am.hdr.stage = hfName
		case hfName:
			start := i
			i = skipFieldName(data, i)
			if i > start {
				am.hdr.nameBuf = append(am.hdr.nameBuf, data[start:i]...)
				if !am.firePayload(PayloadHeaderField, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			if len(am.hdr.nameBuf) == 0 || data[i] != ':' {
				am.fail(errs.CodeInvalidHeaderToken, "malformed header field name")
				return i, false
			}
			am.hdr.semantic = classifyFieldName(am.hdr.nameBuf)
			am.fireSignal(HeaderFieldComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			i++ // skip ':'
			am.hdr.valueBuf = am.hdr.valueBuf[:0]
			am.hdr.stage = hfAfterColon
		case hfAfterColon:
			i = skipWS(data, i)
			if i >= len(data) {
				return i, true
			}
			am.hdr.stage = hfValue
		case hfValue:
			start := i
			for i < len(data) && data[i] != '\r' && data[i] != '\n' {
				i++
			}
			if i > start {
				chunk := data[start:i]
				if am.hdr.semantic != semOther {
					am.hdr.valueBuf = append(am.hdr.valueBuf, chunk...)
				}
				if !am.firePayload(PayloadHeaderValue, chunk) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			am.hdr.valueBuf = trimOWS(am.hdr.valueBuf)
			if err := am.applySemanticHeader(); err != nil {
				return i, false
			}
			am.fireSignal(HeaderValueComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			am.hdr.stage = hfLineEnd
		case hfLineEnd:
			end, _, st := skipCRLF(data, i, am.lenient)
			if st == statusMoreBytes {
				return i, true
			}
			if st != statusOK {
				am.fail(errs.CodeInvalidHeaderToken, "malformed header line terminator")
				return i, false
			}
			i = end
			am.hdr.stage = hfStart
		default:
			panic("automaton: unhandled header stage")
		}
	}
}

// applySemanticHeader folds am.hdr.valueBuf into the tracked registers for
// the field classified in am.hdr.semantic. Called once the full value for
// a header line has been accumulated.
func (am *Automaton) applySemanticHeader() error {
	switch am.hdr.semantic {
	case semContentLength:
		v, ok := decToU(am.hdr.valueBuf)
		if !ok {
			if am.lenient.Has(LenientHeaders) {
				return nil
			}
			am.fail(errs.CodeInvalidContentLength, "malformed Content-Length value")
			return am.fatal
		}
		if am.hasContentLength && v != am.contentLength && !am.lenient.Has(LenientHeaders) {
			am.fail(errs.CodeInvalidContentLength, "conflicting Content-Length headers")
			return am.fatal
		}
		am.contentLength = v
		am.hasContentLength = true
	case semTransferEncoding:
		for _, tok := range splitCommaTokens(am.hdr.valueBuf) {
			coding := ResolveTransferEncoding(tok)
			if coding == TrEncOther && !am.lenient.Has(LenientTransferEncoding) {
				am.fail(errs.CodeInvalidTransferEncoding, "unrecognized transfer-coding")
				return am.fatal
			}
			am.transferEncoding |= coding
		}
	case semConnection:
		for _, tok := range splitCommaTokens(am.hdr.valueBuf) {
			switch {
			case bytescase.CmpEq(tok, []byte("close")):
				am.hdr.connClose = true
			case bytescase.CmpEq(tok, []byte("keep-alive")):
				am.hdr.connKeepAlive = true
			case bytescase.CmpEq(tok, []byte("upgrade")):
				am.hdr.connUpgradeTok = true
			}
		}
	case semUpgrade:
		am.upgrade = true
		for _, tok := range splitCommaTokens(am.hdr.valueBuf) {
			am.upgradeProtocol |= ResolveUpgradeProtocol(tok)
		}
	case semHost:
		am.hdr.sawHost = true
	}
	return nil
}

// finishHeaders invokes the headers-complete callback and applies its
// Action (spec §4.1 "Callback return discipline", headers-complete-only
// actions).
func (am *Automaton) finishHeaders(i int) (int, bool) {
	act := am.cb.headersComplete()
	switch act {
	case ActionProceed:
		am.state = stateBodyDecide
	case ActionAssumeNoBodyAndContinue:
		am.forcedNoBody = true
		am.state = stateBodyDecide
	case ActionAssumeNoBodyAndPauseUpgrade:
		am.forcedNoBody = true
		am.pendingPauseUpgrade = true
		am.state = stateBodyDecide
	case ActionError:
		am.fail(errs.CodeCBHeadersComplete, "callback rejected headers-complete")
		return i, false
	case ActionUserError:
		am.fail(errs.CodeUser, "user error on headers-complete")
		return i, false
	default:
		am.fail(errs.CodeCBHeadersComplete, "invalid action from headers-complete callback")
		return i, false
	}
	return i, false
}

// decideBody computes body framing once headers are fully parsed (spec §4.2
// "Body framing"): Transfer-Encoding: chunked takes priority over
// Content-Length, which takes priority over close-delimited bodies; CONNECT
// requests and any Upgrade negotiated via "Connection: upgrade" never carry
// an HTTP body and leave the parser suspended for the caller to resume
// after the protocol switch.
func (am *Automaton) decideBody() {
	autoUpgrade := am.method == MConnect || (am.upgrade && am.hdr.connUpgradeTok)
	if autoUpgrade {
		am.forcedNoBody = true
		am.pendingPauseUpgrade = true
	}
	if am.hasContentLength && am.transferEncoding&TrEncChunked != 0 {
		if !am.lenient.Has(LenientChunkedLength) {
			am.fail(errs.CodeUnexpectedContentLengthAfterTE, "Content-Length and chunked Transfer-Encoding both present")
			return
		}
		am.hasContentLength = false
	}
	am.shouldKeepAlive = am.computeKeepAlive()
	noBodyStatus := !am.isRequest && (am.statusCode/100 == 1 || am.statusCode == 204 || am.statusCode == 304)

	switch {
	case am.forcedNoBody || noBodyStatus:
		am.state = stateBodyNone
	case am.transferEncoding&TrEncChunked != 0:
		am.bd = bodyState{}
		am.state = stateBodyChunkSize
	case am.hasContentLength:
		if am.contentLength == 0 {
			am.state = stateBodyNone
		} else {
			am.bd = bodyState{remaining: am.contentLength}
			am.state = stateBodyCLen
		}
	case !am.isRequest:
		am.messageNeedsEOF = true
		am.bd = bodyState{}
		am.state = stateBodyEOF
	default:
		am.state = stateBodyNone
	}
	am.forcedNoBody = false
}

func (am *Automaton) computeKeepAlive() bool {
	if am.hdr.connClose {
		return false
	}
	if am.hdr.connKeepAlive {
		return true
	}
	if am.lenient.Has(LenientKeepAlive) {
		return true
	}
	return am.httpMajor > 1 || (am.httpMajor == 1 && am.httpMinor >= 1)
}
