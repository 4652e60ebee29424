package message

import (
	"strings"

	"github.com/httpflux/httpparse/automaton"
)

type chunkSlot struct {
	data []byte

	curExtName    []byte
	pendingName   []byte
	curExtValue   []byte
	exts          []ChunkExtension
}

// Builder reassembles automaton events into Request/Response/Either values
// (spec §4.3 "Message Builder (C3)"). It implements the automaton.Callbacks
// contract directly; install Callbacks() on a *automaton.Automaton (or on
// an httpparse.Parser wrapping one) to drive it.
type Builder struct {
	stateFn func() automaton.Observable

	curURL, curMethod, curProtocol, curVersion, curStatus []byte
	haveURL, haveMethod, haveProtocol, haveVersion, haveStatus bool
	url, method, protocol, version, status string

	curField, curValue []byte
	fields, values      []string

	chunks []chunkSlot

	// completed queues messages finished during the current Execute/Parse
	// call (pipelined requests/responses can complete more than one per
	// call); the driver (messages.Parser) drains it after each call.
	completed []Either
}

// NewBuilder creates an empty Builder. stateFn must return the owning
// automaton's current Observable snapshot; it is called once per
// message-complete to pick up fields (status code, and their derived
// names) that never travel as payload fragments.
func NewBuilder(stateFn func() automaton.Observable) *Builder {
	b := &Builder{stateFn: stateFn}
	b.resetMessage()
	return b
}

// Callbacks returns the automaton.Callbacks table that drives this Builder.
func (b *Builder) Callbacks() automaton.Callbacks {
	return automaton.Callbacks{
		OnSignal:          b.onSignal,
		OnPayload:         b.onPayload,
		OnHeadersComplete: func() automaton.Action { return automaton.ActionProceed },
	}
}

// Drain returns every message completed since the last Drain call, in
// completion order, and clears the queue.
func (b *Builder) Drain() []Either {
	if len(b.completed) == 0 {
		return nil
	}
	out := b.completed
	b.completed = nil
	return out
}

func (b *Builder) resetMessage() {
	b.curURL, b.curMethod, b.curProtocol, b.curVersion, b.curStatus = nil, nil, nil, nil, nil
	b.haveURL, b.haveMethod, b.haveProtocol, b.haveVersion, b.haveStatus = false, false, false, false, false
	b.url, b.method, b.protocol, b.version, b.status = "", "", "", "", ""
	b.curField, b.curValue = nil, nil
	b.fields, b.values = nil, nil
	b.chunks = []chunkSlot{{}}
}

func (b *Builder) onPayload(t automaton.PayloadType, data []byte) automaton.Action {
	switch t {
	case automaton.PayloadURL:
		b.curURL = append(b.curURL, data...)
	case automaton.PayloadMethod:
		b.curMethod = append(b.curMethod, data...)
	case automaton.PayloadProtocol:
		b.curProtocol = append(b.curProtocol, data...)
	case automaton.PayloadVersion:
		b.curVersion = append(b.curVersion, data...)
	case automaton.PayloadStatus:
		b.curStatus = append(b.curStatus, data...)
	case automaton.PayloadHeaderField:
		b.curField = append(b.curField, data...)
	case automaton.PayloadHeaderValue:
		b.curValue = append(b.curValue, data...)
	case automaton.PayloadBody:
		cur := &b.chunks[len(b.chunks)-1]
		cur.data = append(cur.data, data...)
	case automaton.PayloadChunkExtensionName:
		cur := &b.chunks[len(b.chunks)-1]
		cur.curExtName = append(cur.curExtName, data...)
	case automaton.PayloadChunkExtensionValue:
		cur := &b.chunks[len(b.chunks)-1]
		cur.curExtValue = append(cur.curExtValue, data...)
	}
	return automaton.ActionProceed
}

func (b *Builder) onSignal(sig automaton.Signal) automaton.Action {
	switch sig {
	case automaton.MessageBegin:
		b.resetMessage()
	case automaton.URLComplete:
		if !b.haveURL {
			b.url, b.haveURL = string(b.curURL), true
		}
		b.curURL = nil
	case automaton.MethodComplete:
		if !b.haveMethod {
			b.method, b.haveMethod = string(b.curMethod), true
		}
		b.curMethod = nil
	case automaton.ProtocolComplete:
		if !b.haveProtocol {
			b.protocol, b.haveProtocol = string(b.curProtocol), true
		}
		b.curProtocol = nil
	case automaton.VersionComplete:
		if !b.haveVersion {
			b.version, b.haveVersion = string(b.curVersion), true
		}
		b.curVersion = nil
	case automaton.StatusComplete:
		if !b.haveStatus {
			b.status, b.haveStatus = string(b.curStatus), true
		}
		b.curStatus = nil
	case automaton.HeaderFieldComplete:
		b.fields = append(b.fields, string(b.curField))
		b.curField = nil
	case automaton.HeaderValueComplete:
		b.values = append(b.values, string(b.curValue))
		b.curValue = nil
	case automaton.ChunkExtensionNameComplete:
		cur := &b.chunks[len(b.chunks)-1]
		cur.pendingName = append([]byte(nil), cur.curExtName...)
		cur.curExtName = nil
	case automaton.ChunkExtensionValueComplete:
		cur := &b.chunks[len(b.chunks)-1]
		cur.exts = append(cur.exts, ChunkExtension{
			Name:  string(cur.pendingName),
			Value: string(cur.curExtValue),
		})
		cur.curExtValue = nil
	case automaton.ChunkHeader:
		// pure metadata boundary; no group to seal
	case automaton.ChunkComplete:
		b.chunks = append(b.chunks, chunkSlot{})
	case automaton.MessageComplete:
		b.finalize()
	case automaton.Reset:
		b.resetMessage()
	}
	return automaton.ActionProceed
}

func (b *Builder) headers() Headers {
	n := len(b.fields)
	if len(b.values) < n {
		n = len(b.values)
	}
	if n == 0 {
		return nil
	}
	out := make(Headers, 0, n)
	for i := 0; i < n; i++ {
		if b.fields[i] == "" && b.values[i] == "" {
			continue
		}
		out = append(out, HeaderField{Name: strings.ToValidUTF8(b.fields[i], "�"), Value: b.values[i]})
	}
	return out
}

func (b *Builder) body() Body {
	// Drop the sentinel trailing empty slot(s) left after the last
	// chunk-complete (spec §4.3 "Edge cases"). Chunk-complete now fires
	// for the terminating zero-chunk too, so more than one empty slot
	// can trail the last chunk that actually carried data or extensions;
	// strip all of them, not just the last one.
	slots := b.chunks
	for len(slots) > 0 && len(slots[len(slots)-1].data) == 0 && len(slots[len(slots)-1].exts) == 0 {
		slots = slots[:len(slots)-1]
	}
	nonEmpty := 0
	anyExt := false
	for _, s := range slots {
		if len(s.data) > 0 {
			nonEmpty++
		}
		if len(s.exts) > 0 {
			anyExt = true
		}
	}
	switch {
	case nonEmpty == 0 && !anyExt:
		return Body{Kind: BodyEmpty}
	case nonEmpty == 1 && !anyExt && len(slots) == 1:
		return Body{Kind: BodySingle, Single: slots[0].data}
	default:
		chunks := make([]Chunk, len(slots))
		for i, s := range slots {
			exts := s.exts
			var filtered []ChunkExtension
			for _, e := range exts {
				if e.Name == "" && e.Value == "" {
					continue
				}
				filtered = append(filtered, e)
			}
			chunks[i] = Chunk{Data: s.data, Extensions: filtered}
		}
		return Body{Kind: BodyChunked, Chunks: chunks}
	}
}

func (b *Builder) finalize() {
	obs := b.stateFn()
	hdrs := b.headers()
	bd := b.body()

	isRequest := obs.Mode == automaton.Request
	isResponse := obs.Mode == automaton.Response

	switch {
	case isRequest && b.haveMethod && b.haveURL && b.haveProtocol && b.haveVersion:
		b.completed = append(b.completed, Either{Kind: KindRequest, Request: Request{
			Method:   b.method,
			URL:      b.url,
			Protocol: b.protocol,
			Version:  b.version,
			Headers:  hdrs,
			Body:     bd,
		}})
	case isResponse && b.haveProtocol && b.haveVersion:
		b.completed = append(b.completed, Either{Kind: KindResponse, Response: Response{
			Protocol:   b.protocol,
			Version:    b.version,
			StatusCode: obs.StatusCode,
			StatusName: obs.StatusName,
			Status:     b.status,
			Headers:    hdrs,
			Body:       bd,
		}})
	}
}
