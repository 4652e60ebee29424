package netutil

import (
	"net"
	"testing"

	"github.com/rs/zerolog"

	"github.com/httpflux/httpparse"
	"github.com/httpflux/httpparse/message"
	"github.com/httpflux/httpparse/messages"
)

func TestReaderRunDeliversMessageThenEOF(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	nop := zerolog.Nop()
	p := messages.New(httpparse.Request)
	r := New(server, p, 0, &nop)

	var got []message.Either
	done := make(chan error, 1)
	go func() {
		done <- r.Run(func(m message.Either) { got = append(got, m) })
	}()

	go func() {
		client.Write([]byte("GET /x HTTP/1.1\r\n\r\n"))
		client.Close()
	}()

	if err := <-done; err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	req, ok := got[0].AsRequest()
	if !ok || req.URL != "/x" {
		t.Fatalf("unexpected message: %+v", got[0])
	}
}
