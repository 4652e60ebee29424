package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpflux/httpparse/automaton"
)

func drive(t *testing.T, mode automaton.Mode, input string) []Either {
	t.Helper()
	am := automaton.New(mode)
	b := NewBuilder(am.State)
	am.SetCallbacks(b.Callbacks())
	require.NoError(t, am.Execute([]byte(input)))
	return b.Drain()
}

func TestBuilderMinimalRequest(t *testing.T) {
	got := drive(t, automaton.Request, "GET / HTTP/1.1\r\n\r\n")
	require.Len(t, got, 1)

	req, ok := got[0].AsRequest()
	require.True(t, ok)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/", req.URL)
	assert.Equal(t, "HTTP", req.Protocol)
	assert.Equal(t, "1.1", req.Version)
	assert.Empty(t, req.Headers)
	assert.Equal(t, BodyEmpty, req.Body.Kind)
}

func TestBuilderContentLengthBody(t *testing.T) {
	input := "GET /path HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nHello"
	got := drive(t, automaton.Request, input)
	require.Len(t, got, 1)

	req, ok := got[0].AsRequest()
	require.True(t, ok)
	v, ok := req.Headers.Get("host")
	require.True(t, ok)
	assert.Equal(t, "example.com", v)
	v, ok = req.Headers.Get("Content-Length")
	require.True(t, ok)
	assert.Equal(t, "5", v)
	assert.Equal(t, BodySingle, req.Body.Kind)
	assert.Equal(t, "Hello", string(req.Body.Data()))
}

func TestBuilderPipelinedRequests(t *testing.T) {
	one := "GET / HTTP/1.1\r\n\r\n"
	got := drive(t, automaton.Request, one+one)
	require.Len(t, got, 2)
	for _, m := range got {
		req, ok := m.AsRequest()
		require.True(t, ok)
		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/", req.URL)
	}
}

func TestBuilderChunkedResponseWithExtension(t *testing.T) {
	input := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5;charset=utf-8\r\nHello\r\n0\r\n\r\n"
	got := drive(t, automaton.Response, input)
	require.Len(t, got, 1)

	resp, ok := got[0].AsResponse()
	require.True(t, ok)
	assert.EqualValues(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Status)
	require.Equal(t, BodyChunked, resp.Body.Kind)
	require.Len(t, resp.Body.Chunks, 1)
	assert.Equal(t, "Hello", string(resp.Body.Data()))

	chunk := resp.Body.Chunks[0]
	require.Len(t, chunk.Extensions, 1)
	assert.Equal(t, "charset", chunk.Extensions[0].Name)
	assert.Equal(t, "utf-8", chunk.Extensions[0].Value)
}

func TestBuilderChunkedBodyWithExtensionOnlyTerminator(t *testing.T) {
	input := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n0;foo=bar\r\n\r\n"
	got := drive(t, automaton.Response, input)
	require.Len(t, got, 1)

	resp, ok := got[0].AsResponse()
	require.True(t, ok)
	require.Equal(t, BodyChunked, resp.Body.Kind)
	require.Len(t, resp.Body.Chunks, 1)
	assert.Empty(t, resp.Body.Data())

	chunk := resp.Body.Chunks[0]
	require.Len(t, chunk.Extensions, 1)
	assert.Equal(t, "foo", chunk.Extensions[0].Name)
	assert.Equal(t, "bar", chunk.Extensions[0].Value)
}

func TestBuilderEitherModeDetectsResponse(t *testing.T) {
	got := drive(t, automaton.Either, "HTTP/1.1 204 No Content\r\n\r\n")
	require.Len(t, got, 1)
	resp, ok := got[0].AsResponse()
	require.True(t, ok)
	assert.EqualValues(t, 204, resp.StatusCode)
}

func TestBuilderEitherModeDetectsRequest(t *testing.T) {
	got := drive(t, automaton.Either, "POST /submit HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	require.Len(t, got, 1)
	req, ok := got[0].AsRequest()
	require.True(t, ok)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/submit", req.URL)
}
