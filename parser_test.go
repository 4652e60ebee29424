package httpparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserMinimalRequest(t *testing.T) {
	p := New(Config{Mode: Request})
	var urls []string
	var cur []byte
	p.SetCallbacks(Callbacks{
		OnPayload: func(t PayloadType, data []byte) Action {
			if t == PayloadURL {
				cur = append(cur, data...)
			}
			return ActionProceed
		},
		OnSignal: func(sig Signal) Action {
			if sig == URLComplete {
				urls = append(urls, string(cur))
				cur = nil
			}
			return ActionProceed
		},
	})

	require.NoError(t, p.Parse([]byte("GET /hello HTTP/1.1\r\n\r\n")))
	require.Len(t, urls, 1)
	assert.Equal(t, "/hello", urls[0])

	st := p.State()
	assert.Equal(t, Request, st.Mode)
	assert.Equal(t, MGet, st.Method)
}

func TestParserPauseResume(t *testing.T) {
	p := New(Config{Mode: Request})

	p.Pause()
	err := p.Parse([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.Error(t, err, "parser must stay paused until Resume")

	p.Resume()
	require.NoError(t, p.Parse([]byte("GET / HTTP/1.1\r\n\r\n")))
}

func TestParserResetClearsStickyError(t *testing.T) {
	p := New(Config{Mode: Request})
	err := p.Parse([]byte("BADMETHOD\r\n\r\n"))
	require.Error(t, err)

	err2 := p.Parse([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())

	p.Reset()
	require.NoError(t, p.Parse([]byte("GET / HTTP/1.1\r\n\r\n")))
}

func TestParserLenientFlagsRoundTrip(t *testing.T) {
	p := New(Config{Mode: Request, Lenient: LenientKeepAlive})
	assert.True(t, p.LenientFlags().Has(LenientKeepAlive))
	p.SetLenientFlags(LenientFlags(0))
	assert.False(t, p.LenientFlags().Has(LenientKeepAlive))
}
