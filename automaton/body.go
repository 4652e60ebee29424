package automaton

// bodyState holds the registers needed by every body-framing sub-state
// (Content-Length countdown, close-delimited EOF tracking, and the
// chunked-encoding sub-machine implemented in chunk.go).
type bodyState struct {
	remaining  uint64 // Content-Length bytes left, or current chunk's data left
	noMoreData bool   // set by Automaton.Finish for close-delimited bodies

	chunkStage     chunkStage
	chunkSizeVal   uint64
	chunkSizeSeen  bool
	extNameBuf     []byte
	trailerStage   hdrFieldStage
	trailerNameBuf []byte
}

// stepBodyCLen consumes up to am.bd.remaining bytes of a Content-Length
// delimited body, forwarding whatever is available as body payload
// fragments (spec §4.2 "Content-Length body").
func (am *Automaton) stepBodyCLen(data []byte, i int) (int, bool) {
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
	am.fireSignal(MessageComplete)
	if am.fatal != nil {
		return end, false
	}
	am.state = stateMessageDone
	return end, false
}

// stepBodyEOF consumes a close-delimited body: every byte presented belongs
// to the body until the caller signals end-of-stream via Finish (spec §4.2
// "messageNeedsEOF").
func (am *Automaton) stepBodyEOF(data []byte, i int) (int, bool) {
	if i < len(data) {
		chunk := data[i:]
		if !am.firePayload(PayloadBody, chunk) {
			return len(data), false
		}
		i = len(data)
	}
	if !am.bd.noMoreData {
		return i, true
	}
	am.fireSignal(MessageComplete)
	if am.fatal != nil {
		return i, false
	}
	am.state = stateMessageDone
	return i, false
}
