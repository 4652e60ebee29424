// Package mux provides the thread-safety shim named in spec §5
// ("Concurrency & Resource model"): a Parser instance is not safe for
// concurrent use, and the only serialization point the spec allows is
// acquisition of a single mutex around the whole call.
package mux

import (
	"sync"

	"github.com/httpflux/httpparse/message"
	"github.com/httpflux/httpparse/messages"
)

// SerialParser wraps a *messages.Parser behind a mutex so that callers
// sharing one parser across goroutines (e.g. a connection handed off
// between a reader goroutine and a drain goroutine) still observe the
// single-writer semantics the automaton assumes. It adds no buffering and
// no additional state machine of its own; the serialization point is the
// acquisition of the mutex, nothing more.
type SerialParser struct {
	mu sync.Mutex
	p  *messages.Parser
}

// NewSerial wraps p.
func NewSerial(p *messages.Parser) *SerialParser {
	return &SerialParser{p: p}
}

// Parse serializes access to the underlying Parser's Parse.
func (s *SerialParser) Parse(data []byte) ([]message.Either, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Parse(data)
}

// Finish serializes access to the underlying Parser's Finish.
func (s *SerialParser) Finish() ([]message.Either, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Finish()
}

// Reset serializes access to the underlying Parser's Reset.
func (s *SerialParser) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Reset()
}

// Pause serializes access to the underlying Parser's Pause.
func (s *SerialParser) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Pause()
}

// Resume serializes access to the underlying Parser's Resume.
func (s *SerialParser) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Resume()
}
