package automaton

// Mode selects what grammar the automaton expects on the wire (spec §4.2,
// "new(mode)").
type Mode uint8

const (
	// Request parses only request-line + headers + body framing.
	Request Mode = iota
	// Response parses only status-line + headers + body framing.
	Response
	// Either defers classification until enough bytes arrive to tell a
	// method token from "HTTP/" (spec §9, "Mode tagging").
	Either
)

func (m Mode) String() string {
	switch m {
	case Request:
		return "request"
	case Response:
		return "response"
	case Either:
		return "either"
	default:
		return "unknown"
	}
}
