package automaton

import "github.com/httpflux/httpparse/errs"

// flStage is the stage of request-line / status-line scanning
// (ported in spirit from the teacher's PFLine, parse_fline.go, split into
// protocol/version/method/url/status/reason fields so each can be reported
// as its own payload type per spec §3).
type flStage uint8

const (
	fsInit flStage = iota
	fsProbe // Either mode only: disambiguating method vs "HTTP/"
	fsMethod
	fsURL
	fsProtocol
	fsVersionMajor
	fsVersionMinor
	fsReqCRLF
	fsStatusDigits
	fsReason
	fsRespCRLF
)

// firstLineState is the request-line / status-line sub-state held by the
// Automaton between Execute calls.
type firstLineState struct {
	stage           flStage
	probe           [5]byte
	probeLen        int
	methodBuf       []byte // accumulates the full method token across fragments
	verMajor        int
	verMinor        int
	statusDigits    int
	statusDigitsLen int
}

func (f firstLineState) started() bool { return f.stage != fsInit }

var httpPrefix = [5]byte{'H', 'T', 'T', 'P', '/'}

// stepFirstLine advances request-line/status-line parsing. Returns the new
// cursor and whether more data is needed.
func (am *Automaton) stepFirstLine(data []byte, i int) (int, bool) {
	if am.fl.stage == fsInit {
		am.fireSignal(MessageBegin)
		if am.fatal != nil || am.paused {
			return i, true
		}
		if am.mode == Either {
			am.fl.stage = fsProbe
		} else if am.mode == Request {
			am.fl.stage = fsMethod
		} else {
			am.fl.stage = fsProtocol
		}
	}

	for {
		switch am.fl.stage {
		case fsProbe:
			for i < len(data) {
				c := data[i]
				if c != httpPrefix[am.fl.probeLen] {
					// mismatch: this is a request; replay the probe bytes
					// already buffered as the start of the method token.
					am.isRequest = true
					am.resolved = true
					probeCopy := append([]byte(nil), am.fl.probe[:am.fl.probeLen]...)
					am.fl.methodBuf = append(am.fl.methodBuf, probeCopy...)
					am.fl.stage = fsMethod
					am.fl.probeLen = 0
					if len(probeCopy) > 0 && !am.firePayload(PayloadMethod, probeCopy) {
						return i, false
					}
					break
				}
				am.fl.probe[am.fl.probeLen] = c
				am.fl.probeLen++
				i++
				if am.fl.probeLen == len(httpPrefix) {
					am.isRequest = false
					am.resolved = true
					am.fl.stage = fsProtocol
					if !am.firePayload(PayloadProtocol, []byte("HTTP")) {
						return i, false
					}
					am.fireSignal(ProtocolComplete)
					if am.fatal != nil || am.paused {
						return i, true
					}
					am.fl.stage = fsVersionMajor
					am.fl.probeLen = 0
					break
				}
			}
			if am.fl.stage == fsProbe {
				return i, true // ran out of data, still undecided
			}
		case fsMethod:
			start := i
			for i < len(data) && data[i] != ' ' {
				if data[i] == '\r' || data[i] == '\n' {
					am.fail(errs.CodeInvalidMethod, "invalid method encountered")
					return i, false
				}
				i++
			}
			if i > start {
				am.fl.methodBuf = append(am.fl.methodBuf, data[start:i]...)
				if !am.firePayload(PayloadMethod, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			if len(am.fl.methodBuf) == 0 {
				am.fail(errs.CodeInvalidMethod, "invalid method encountered")
				return i, false
			}
			am.method = GetMethodNo(am.fl.methodBuf)
			am.fireSignal(MethodComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			i++ // skip SP
			am.fl.stage = fsURL
		case fsURL:
			start := i
			i = skipToken(data, i)
			if i > start {
				if !am.firePayload(PayloadURL, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			if data[i] != ' ' {
				am.fail(errs.CodeInvalidURL, "invalid request-target")
				return i, false
			}
			am.fireSignal(URLComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			i++
			am.fl.stage = fsProtocol
		case fsProtocol:
			start := i
			for i < len(data) && am.fl.probeLen < len(httpPrefix) {
				if data[i] != httpPrefix[am.fl.probeLen] {
					am.fail(errs.CodeInvalidVersion, "expected HTTP/ token")
					return i, false
				}
				am.fl.probeLen++
				i++
			}
			if am.fl.probeLen < len(httpPrefix) {
				if i > start {
					// don't emit a partial literal match as payload; it is
					// not a real fragment boundary the spec promises.
				}
				return i, true
			}
			if !am.firePayload(PayloadProtocol, []byte("HTTP")) {
				return i, false
			}
			am.fireSignal(ProtocolComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			am.fl.probeLen = 0
			am.fl.stage = fsVersionMajor
		case fsVersionMajor:
			for i < len(data) && isDigit(data[i]) {
				am.fl.verMajor = am.fl.verMajor*10 + int(data[i]-'0')
				i++
			}
			if i >= len(data) {
				return i, true
			}
			if data[i] != '.' {
				am.fail(errs.CodeInvalidVersion, "malformed HTTP version")
				return i, false
			}
			i++
			am.fl.stage = fsVersionMinor
		case fsVersionMinor:
			for i < len(data) && isDigit(data[i]) {
				am.fl.verMinor = am.fl.verMinor*10 + int(data[i]-'0')
				i++
			}
			if i >= len(data) {
				return i, true
			}
			if err := am.finishVersion(); err != nil {
				return i, false
			}
			if am.isRequest {
				if data[i] != '\r' && data[i] != '\n' {
					am.fail(errs.CodeInvalidVersion, "trailing characters after version")
					return i, false
				}
				am.fl.stage = fsReqCRLF
			} else {
				if data[i] != ' ' {
					am.fail(errs.CodeInvalidVersion, "expected space after version")
					return i, false
				}
				i++
				am.fl.stage = fsStatusDigits
			}
		case fsReqCRLF:
			end, _, st := skipCRLF(data, i, am.lenient)
			if st == statusMoreBytes {
				return i, true
			}
			if st != statusOK {
				am.fail(errs.CodeInvalidVersion, "malformed request-line terminator")
				return i, false
			}
			i = end
			am.fl.stage = fsInit
			am.state = stateHeaders
			return i, false
		case fsStatusDigits:
			for i < len(data) && am.fl.statusDigitsLen < 3 {
				if !isDigit(data[i]) {
					am.fail(errs.CodeInvalidStatus, "non numerical status code")
					return i, false
				}
				am.fl.statusDigits = am.fl.statusDigits*10 + int(data[i]-'0')
				am.fl.statusDigitsLen++
				i++
			}
			if am.fl.statusDigitsLen < 3 {
				return i, true
			}
			am.statusCode = uint16(am.fl.statusDigits)
			if i >= len(data) {
				return i, true
			}
			if data[i] != ' ' {
				am.fail(errs.CodeInvalidStatus, "expected space after status code")
				return i, false
			}
			i++
			am.fl.stage = fsReason
		case fsReason:
			start := i
			for i < len(data) && data[i] != '\r' && data[i] != '\n' {
				i++
			}
			if i > start {
				if !am.firePayload(PayloadStatus, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			// the reason phrase is the status field's payload, so its
			// complete signal follows the last reason-phrase fragment.
			am.fireSignal(StatusComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			am.fl.stage = fsRespCRLF
		case fsRespCRLF:
			end, _, st := skipCRLF(data, i, am.lenient)
			if st == statusMoreBytes {
				return i, true
			}
			if st != statusOK {
				am.fail(errs.CodeInvalidStatus, "malformed status-line terminator")
				return i, false
			}
			i = end
			am.fl.stage = fsInit
			am.state = stateHeaders
			return i, false
		default:
			panic("automaton: unhandled first-line stage")
		}
	}
}

func (am *Automaton) finishVersion() error {
	major, minor := am.fl.verMajor, am.fl.verMinor
	known := (major == 0 && minor == 9) || (major == 1 && (minor == 0 || minor == 1)) || (major == 2 && minor == 0)
	if !known && !am.lenient.Has(LenientVersion) {
		am.fail(errs.CodeInvalidVersion, "unsupported HTTP version")
		return am.fatal
	}
	am.httpMajor = uint8(major)
	am.httpMinor = uint8(minor)
	v := versionText(major, minor)
	if !am.firePayload(PayloadVersion, v) {
		return am.fatal
	}
	am.fireSignal(VersionComplete)
	if am.fatal != nil {
		return am.fatal
	}
	return nil
}

func versionText(major, minor int) []byte {
	return []byte(itoa(major) + "." + itoa(minor))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
