// Package message implements the Message Builder (C3) and Value Model (C5):
// it reassembles automaton events into immutable Request/Response/Either
// values (spec §4.3, §4.5).
package message

import "github.com/intuitivelabs/bytescase"

// HeaderField is a single (name, value) pair in original fragment order.
// Headers preserves insertion order and keeps duplicates as distinct
// entries (spec §4.3 "Headers").
type HeaderField struct {
	Name  string
	Value string
}

// Headers is an ordered, possibly multi-valued header list.
type Headers []HeaderField

// Values returns all values for name, case-insensitively, in insertion
// order, or nil if name is absent.
func (h Headers) Values(name string) []string {
	var out []string
	n := []byte(name)
	for _, f := range h {
		if bytescase.CmpEq([]byte(f.Name), n) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Get returns the first value for name, case-insensitively, and whether it
// was present.
func (h Headers) Get(name string) (string, bool) {
	n := []byte(name)
	for _, f := range h {
		if bytescase.CmpEq([]byte(f.Name), n) {
			return f.Value, true
		}
	}
	return "", false
}

// ChunkExtension is a single (name, value) pair attached to a chunk.
type ChunkExtension struct {
	Name  string
	Value string
}

// Chunk is one chunk of a chunked body (spec §3 "Chunk").
type Chunk struct {
	Data       []byte
	Extensions []ChunkExtension
}

// BodyKind discriminates the three Body shapes (spec §3 "Body").
type BodyKind uint8

const (
	BodyEmpty BodyKind = iota
	BodySingle
	BodyChunked
)

// Body is one of empty, single(bytes), or chunked(sequence<Chunk>).
type Body struct {
	Kind   BodyKind
	Single []byte
	Chunks []Chunk
}

// Data returns the full reconstructed body: concatenation of chunk bytes in
// order for chunked, identity for single, empty otherwise (spec §4.5).
func (b Body) Data() []byte {
	switch b.Kind {
	case BodySingle:
		return b.Single
	case BodyChunked:
		var total int
		for _, c := range b.Chunks {
			total += len(c.Data)
		}
		out := make([]byte, 0, total)
		for _, c := range b.Chunks {
			out = append(out, c.Data...)
		}
		return out
	default:
		return nil
	}
}

// Request is a fully reconstructed HTTP request (spec §3 "Message Value").
type Request struct {
	Method   string
	URL      string
	Protocol string
	Version  string
	Headers  Headers
	Body     Body
}

// Response is a fully reconstructed HTTP response (spec §3 "Message
// Value"). StatusCode/StatusName are carried from the automaton's
// observable state at message-complete time [EXPANSION: spec.md names only
// the reason-phrase text as "status"; the numeric code and its derived name
// are part of Parser Observable State and are attached here for
// convenience].
type Response struct {
	Protocol   string
	Version    string
	StatusCode uint16
	StatusName string
	Status     string
	Headers    Headers
	Body       Body
}

// Kind discriminates an Either value.
type Kind uint8

const (
	KindNone Kind = iota
	KindRequest
	KindResponse
)

// Either is a tagged union of Request and Response (spec §3 "Either").
type Either struct {
	Kind     Kind
	Request  Request
	Response Response
}

// AsRequest returns the request and true if Kind is KindRequest.
func (e Either) AsRequest() (Request, bool) {
	if e.Kind == KindRequest {
		return e.Request, true
	}
	return Request{}, false
}

// AsResponse returns the response and true if Kind is KindResponse.
func (e Either) AsResponse() (Response, bool) {
	if e.Kind == KindResponse {
		return e.Response, true
	}
	return Response{}, false
}
