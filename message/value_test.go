package message

import "testing"

func TestHeadersGetAndValuesCaseInsensitive(t *testing.T) {
	h := Headers{
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "set-cookie", Value: "b=2"},
		{Name: "Content-Type", Value: "text/plain"},
	}
	vals := h.Values("SET-COOKIE")
	if len(vals) != 2 || vals[0] != "a=1" || vals[1] != "b=2" {
		t.Fatalf("Values(SET-COOKIE) = %v", vals)
	}
	v, ok := h.Get("content-type")
	if !ok || v != "text/plain" {
		t.Fatalf("Get(content-type) = %q, %v", v, ok)
	}
	if _, ok := h.Get("missing"); ok {
		t.Fatalf("Get(missing) should report absent")
	}
}

func TestBodyDataByKind(t *testing.T) {
	empty := Body{Kind: BodyEmpty}
	if got := empty.Data(); got != nil {
		t.Fatalf("empty.Data() = %v, want nil", got)
	}

	single := Body{Kind: BodySingle, Single: []byte("Hello")}
	if got := string(single.Data()); got != "Hello" {
		t.Fatalf("single.Data() = %q", got)
	}

	chunked := Body{Kind: BodyChunked, Chunks: []Chunk{
		{Data: []byte("Hel")},
		{Data: []byte("lo")},
	}}
	if got := string(chunked.Data()); got != "Hello" {
		t.Fatalf("chunked.Data() = %q", got)
	}
}

func TestEitherAccessors(t *testing.T) {
	e := Either{Kind: KindRequest, Request: Request{Method: "GET"}}
	if req, ok := e.AsRequest(); !ok || req.Method != "GET" {
		t.Fatalf("AsRequest() = %+v, %v", req, ok)
	}
	if _, ok := e.AsResponse(); ok {
		t.Fatalf("AsResponse() should report false for a request Either")
	}
}
