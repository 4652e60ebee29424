package httpparse

import "github.com/httpflux/httpparse/automaton"

// Config selects a Parser's mode and interoperability relaxations (spec §3
// "Parser (C2)" construction parameters).
type Config struct {
	// Mode fixes whether the stream carries requests, responses, or is
	// auto-detected per message (automaton.Either).
	Mode automaton.Mode
	// Lenient is the bitmask of relaxations applied from construction.
	Lenient automaton.LenientFlags
}
