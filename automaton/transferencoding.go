package automaton

import "github.com/intuitivelabs/bytescase"

// TransferEncoding is a bitmask of recognized Transfer-Encoding / TE
// coding tokens (ported from the teacher's TrEncT, parse_tr_enc.go).
type TransferEncoding uint

const (
	TrEncNone TransferEncoding = 0
	TrEncChunked TransferEncoding = 1 << (iota - 1)
	TrEncCompress
	TrEncDeflate
	TrEncGzip
	TrEncIdentity
	TrEncTrailers
	TrEncOther // unknown/other coding
)

// ResolveTransferEncoding maps a single coding token (already
// lower/mixed-case, without whitespace) to its flag.
func ResolveTransferEncoding(tok []byte) TransferEncoding {
	switch len(tok) {
	case 7:
		if bytescase.CmpEq(tok, []byte("chunked")) {
			return TrEncChunked
		}
		if bytescase.CmpEq(tok, []byte("deflate")) {
			return TrEncDeflate
		}
	case 8:
		if bytescase.CmpEq(tok, []byte("compress")) {
			return TrEncCompress
		}
		if bytescase.CmpEq(tok, []byte("identity")) {
			return TrEncIdentity
		}
		if bytescase.CmpEq(tok, []byte("trailers")) {
			return TrEncTrailers
		}
	case 4:
		if bytescase.CmpEq(tok, []byte("gzip")) {
			return TrEncGzip
		}
	}
	return TrEncOther
}

// splitCommaTokens splits a (already value-only) header value on commas,
// trimming surrounding OWS from each token. Used for both Transfer-Encoding
// and Connection header values, which share the same #token grammar.
func splitCommaTokens(v []byte) [][]byte {
	var toks [][]byte
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			tok := v[start:i]
			tok = trimOWS(tok)
			if len(tok) > 0 {
				toks = append(toks, tok)
			}
			start = i + 1
		}
	}
	return toks
}

func trimOWS(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	for j > i && (b[j-1] == ' ' || b[j-1] == '\t') {
		j--
	}
	return b[i:j]
}
