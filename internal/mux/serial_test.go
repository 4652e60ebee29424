package mux

import (
	"sync"
	"testing"

	"github.com/httpflux/httpparse"
	"github.com/httpflux/httpparse/messages"
)

func TestSerialParserConcurrentParse(t *testing.T) {
	s := NewSerial(messages.New(httpparse.Request))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Parse([]byte("GET / HTTP/1.1\r\n\r\n"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error from concurrent Parse: %v", err)
		}
	}
}

func TestSerialParserResetRecovery(t *testing.T) {
	s := NewSerial(messages.New(httpparse.Request))

	if _, err := s.Parse([]byte("BADMETHOD\r\n\r\n")); err == nil {
		t.Fatal("expected sticky error from malformed method")
	}
	s.Reset()
	if _, err := s.Parse([]byte("GET / HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
}
