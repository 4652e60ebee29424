package automaton

import "github.com/httpflux/httpparse/errs"

// chunkStage is the sub-state for parsing one chunk-size line, including
// any chunk extensions (spec §4.2 "Chunked body", ported in spirit from the
// teacher's ParseChunk, parse_chunk.go).
type chunkStage uint8

const (
	csSize chunkStage = iota
	csAfterSize
	csExtName
	csExtValue
	csCRLF
)

// stepChunkHeader parses the chunk-size line: size [ ";" ext ]* CRLF. A
// zero-size chunk transitions to the trailer section instead of chunk data.
func (am *Automaton) stepChunkHeader(data []byte, i int) (int, bool) {
	for {
		switch am.bd.chunkStage {
		case csSize:
			// digits accumulate across Execute calls, so a size split
			// between two buffers is read whole.
			for i < len(data) && isHexDigit(data[i]) {
				d, _ := hexToU(data[i : i+1])
				if am.bd.chunkSizeVal > (1<<64-1-d)/16 {
					am.fail(errs.CodeInvalidChunkSize, "chunk size overflow")
					return i, false
				}
				am.bd.chunkSizeVal = am.bd.chunkSizeVal*16 + d
				am.bd.chunkSizeSeen = true
				i++
			}
			if i >= len(data) {
				return i, true
			}
			if !am.bd.chunkSizeSeen {
				am.fail(errs.CodeInvalidChunkSize, "missing chunk size")
				return i, false
			}
			am.state = stateBodyChunkExt
			am.bd.chunkStage = csAfterSize
		case csAfterSize:
			if am.lenient.Has(LenientSpacesAfterChunkSize) {
				i = skipWS(data, i)
			}
			if i >= len(data) {
				return i, true
			}
			switch data[i] {
			case ';':
				i++
				am.bd.chunkStage = csExtName
				am.bd.extNameBuf = am.bd.extNameBuf[:0]
			case '\r', '\n':
				am.bd.chunkStage = csCRLF
			default:
				am.fail(errs.CodeInvalidChunkSize, "unexpected character after chunk size")
				return i, false
			}
		case csExtName:
			start := i
			for i < len(data) {
				c := data[i]
				if c == '=' || c == ';' || c == '\r' || c == '\n' {
					break
				}
				i++
			}
			if i > start {
				if !am.firePayload(PayloadChunkExtensionName, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			am.fireSignal(ChunkExtensionNameComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			switch data[i] {
			case '=':
				i++
				am.bd.chunkStage = csExtValue
			case ';':
				i++
				am.bd.chunkStage = csExtName
			case '\r', '\n':
				am.bd.chunkStage = csCRLF
			}
		case csExtValue:
			start := i
			for i < len(data) {
				c := data[i]
				if c == ';' || c == '\r' || c == '\n' {
					break
				}
				i++
			}
			if i > start {
				if !am.firePayload(PayloadChunkExtensionValue, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
			}
			am.fireSignal(ChunkExtensionValueComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			switch data[i] {
			case ';':
				i++
				am.bd.chunkStage = csExtName
			case '\r', '\n':
				am.bd.chunkStage = csCRLF
			}
		case csCRLF:
			end, _, st := skipCRLF(data, i, am.lenient)
			if st == statusMoreBytes {
				return i, true
			}
			if st != statusOK {
				am.fail(errs.CodeInvalidChunkSize, "malformed chunk-size line terminator")
				return i, false
			}
			i = end
			am.fireSignal(ChunkHeader)
			if am.fatal != nil || am.paused {
				return i, true
			}
			if am.bd.chunkSizeVal == 0 {
				// The CRLF just consumed is this (empty) chunk's trailing
				// CRLF, so chunk-complete fires for the terminating
				// zero-chunk too (spec §4.1 emission rules).
				am.fireSignal(ChunkComplete)
				if am.fatal != nil || am.paused {
					return i, true
				}
				am.state = stateBodyTrailer
				am.hdr = headersState{}
				return i, false
			}
			am.bd.remaining = am.bd.chunkSizeVal
			am.bd.chunkSizeVal = 0
			am.bd.chunkSizeSeen = false
			am.bd.chunkStage = csSize
			am.state = stateBodyChunkData
			return i, false
		default:
			panic("automaton: unhandled chunk stage")
		}
	}
}

// stepChunkData consumes one chunk's data bytes, then transitions to
// consuming its trailing CRLF.
func (am *Automaton) stepChunkData(data []byte, i int) (int, bool) {
	available := len(data) - i
	take := available
	if uint64(take) > am.bd.remaining {
		take = int(am.bd.remaining)
	}
	end := i + take
	if take > 0 {
		chunk := data[i:end]
		am.bd.remaining -= uint64(take)
		if !am.firePayload(PayloadBody, chunk) {
			return end, false
		}
	}
	if am.bd.remaining > 0 {
		return end, true
	}
	am.state = stateBodyChunkCRLF
	return end, false
}

// stepChunkCRLF consumes the CRLF terminating a chunk's data and fires
// ChunkComplete before returning to the next chunk-size line.
func (am *Automaton) stepChunkCRLF(data []byte, i int) (int, bool) {
	end, _, st := skipCRLF(data, i, am.lenient)
	if st == statusMoreBytes {
		return i, true
	}
	if st != statusOK {
		if !am.lenient.Has(LenientOptionalCRLFAfterChunk) {
			am.fail(errs.CodeInvalidChunkSize, "malformed chunk-data terminator")
			return i, false
		}
		end = i // tolerate the next chunk-size line starting immediately
	}
	am.fireSignal(ChunkComplete)
	if am.fatal != nil || am.paused {
		return end, true
	}
	am.bd.chunkStage = csSize
	am.state = stateBodyChunkSize
	return end, false
}

// stepTrailer scans the (optional) trailer header section following the
// last chunk, reusing the header-field-line grammar but finishing the
// message directly once its terminating blank line is reached.
func (am *Automaton) stepTrailer(data []byte, i int) (int, bool) {
	for {
		switch am.hdr.stage {
		case hfStart:
			if i < len(data) && (data[i] == '\r' || data[i] == '\n') {
				end, _, st := skipCRLF(data, i, am.lenient)
				if st == statusMoreBytes {
					return i, true
				}
				if st != statusOK {
					am.fail(errs.CodeInvalidHeaderToken, "malformed trailer terminator")
					return i, false
				}
				am.fireSignal(MessageComplete)
				if am.fatal != nil {
					return end, false
				}
				am.state = stateMessageDone
				return end, false
			}
			if i >= len(data) {
				return i, true
			}
			am.hdr.nameBuf = am.hdr.nameBuf[:0]
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
				am.fail(errs.CodeInvalidHeaderToken, "malformed trailer field name")
				return i, false
			}
			am.fireSignal(HeaderFieldComplete)
			if am.fatal != nil || am.paused {
				return i, true
			}
			i++
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
				if !am.firePayload(PayloadHeaderValue, data[start:i]) {
					return i, false
				}
			}
			if i >= len(data) {
				return i, true
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
				am.fail(errs.CodeInvalidHeaderToken, "malformed trailer line terminator")
				return i, false
			}
			i = end
			am.hdr.stage = hfStart
		default:
			panic("automaton: unhandled trailer stage")
		}
	}
}
