// Command httpparse-dump is a small CLI harness: it reads HTTP/1.x
// traffic from stdin, feeds it through messages.Parser, and prints one
// JSON line per completed message to stdout. Parse errors and connection
// lifecycle events go to stderr via zerolog. It exists so the library has
// a runnable example (spec §1 names a "test harness" collaborator without
// detailing it further).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/httpflux/httpparse"
	"github.com/httpflux/httpparse/message"
	"github.com/httpflux/httpparse/messages"
)

func main() {
	var (
		modeFlag    string
		lenientFlag bool
	)
	pflag.StringVarP(&modeFlag, "mode", "m", "request", "message mode: request, response, or either")
	pflag.BoolVarP(&lenientFlag, "lenient", "l", false, "enable all lenient interoperability flags")
	pflag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	mode, err := parseMode(modeFlag)
	if err != nil {
		log.Error().Err(err).Str("mode", modeFlag).Msg("httpparse-dump: invalid mode")
		os.Exit(2)
	}

	p := messages.New(mode)
	if lenientFlag {
		p.SetLenientFlags(allLenientFlags())
	}
	log = log.With().Str("parser_id", p.ID().String()).Logger()

	enc := json.NewEncoder(os.Stdout)
	buf := make([]byte, 4096)
	for {
		n, rerr := os.Stdin.Read(buf)
		if n > 0 {
			msgs, perr := p.Parse(buf[:n])
			dumpAll(enc, msgs)
			if perr != nil {
				log.Error().Err(perr).Msg("httpparse-dump: parse error")
				os.Exit(1)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				msgs, ferr := p.Finish()
				dumpAll(enc, msgs)
				if ferr != nil {
					log.Error().Err(ferr).Msg("httpparse-dump: finish error")
					os.Exit(1)
				}
				log.Debug().Msg("httpparse-dump: input exhausted")
				return
			}
			log.Error().Err(rerr).Msg("httpparse-dump: stdin read error")
			os.Exit(1)
		}
	}
}

func parseMode(s string) (httpparse.Mode, error) {
	switch s {
	case "request":
		return httpparse.Request, nil
	case "response":
		return httpparse.Response, nil
	case "either":
		return httpparse.Either, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want request, response, or either)", s)
	}
}

func allLenientFlags() httpparse.LenientFlags {
	return httpparse.LenientHeaders |
		httpparse.LenientChunkedLength |
		httpparse.LenientKeepAlive |
		httpparse.LenientTransferEncoding |
		httpparse.LenientVersion |
		httpparse.LenientDataAfterClose |
		httpparse.LenientOptionalLFAfterCR |
		httpparse.LenientOptionalCRBeforeLF |
		httpparse.LenientOptionalCRLFAfterChunk |
		httpparse.LenientSpacesAfterChunkSize
}

func dumpAll(enc *json.Encoder, msgs []message.Either) {
	for _, m := range msgs {
		if err := enc.Encode(toJSON(m)); err != nil {
			fmt.Fprintln(os.Stderr, "httpparse-dump: encode error:", err)
		}
	}
}

// dumpEntry is the on-wire shape printed per message; it is a projection,
// not message.Either itself, so json field names stay stable regardless
// of internal renames.
type dumpEntry struct {
	Kind       string            `json:"kind"`
	Method     string            `json:"method,omitempty"`
	URL        string            `json:"url,omitempty"`
	StatusCode uint16            `json:"status_code,omitempty"`
	Status     string            `json:"status,omitempty"`
	Protocol   string            `json:"protocol"`
	Version    string            `json:"version"`
	Headers    map[string]string `json:"headers"`
	BodyLen    int               `json:"body_len"`
}

func toJSON(m message.Either) dumpEntry {
	headers := func(h message.Headers) map[string]string {
		out := make(map[string]string, len(h))
		for _, f := range h {
			out[f.Name] = f.Value
		}
		return out
	}

	if req, ok := m.AsRequest(); ok {
		return dumpEntry{
			Kind: "request", Method: req.Method, URL: req.URL,
			Protocol: req.Protocol, Version: req.Version,
			Headers: headers(req.Headers), BodyLen: len(req.Body.Data()),
		}
	}
	resp, _ := m.AsResponse()
	return dumpEntry{
		Kind: "response", StatusCode: resp.StatusCode, Status: resp.Status,
		Protocol: resp.Protocol, Version: resp.Version,
		Headers: headers(resp.Headers), BodyLen: len(resp.Body.Data()),
	}
}
