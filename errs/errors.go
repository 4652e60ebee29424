// Package errs defines the stable error codes surfaced by the automaton,
// facade and message layers (see spec §7, "Error object").
package errs

import "fmt"

// Code is a stable numeric error code, mirroring the code space used by
// production HTTP/1.x parsers: grammar errors occupy the low range,
// pause/upgrade/user errors come next, and callback errors follow them.
type Code int

// Error codes. Four values are pinned by spec.md's literal text and MUST
// keep exactly these numbers: CodeInvalidMethod = 6 (§8 S5), CodePaused =
// 21, CodePausedUpgrade = 22, CodeUser = 24 (§7 taxonomy items 3-5). The
// rest are not independently specified; they are assigned explicit,
// non-colliding values around those four fixed points and are stable for
// the lifetime of this package.
const (
	CodeOK Code = 0

	CodeInvalidMethod                  Code = 6
	CodeInvalidURL                     Code = 7
	CodeInvalidVersion                 Code = 8
	CodeInvalidHeaderToken             Code = 9
	CodeInvalidContentLength           Code = 10
	CodeInvalidTransferEncoding        Code = 11
	CodeInvalidChunkSize               Code = 12
	CodeInvalidStatus                  Code = 13
	CodeUnexpectedContentLengthAfterTE Code = 14
	CodeClosedConnection               Code = 15
	CodeInvalidEOFState                Code = 16
	CodeHeaderOverflow                 Code = 17
	CodeUnexpectedCharacter            Code = 18
	CodeStrictViolation                Code = 19

	CodePaused        Code = 21
	CodePausedUpgrade Code = 22
	CodeUser          Code = 24

	// callback errors: one per signal/payload slot, produced when a
	// handler returns ActionError. Numbered after CodeUser so none of
	// the four pinned values above are disturbed as slots are added.
	CodeCBMessageBegin         Code = 25
	CodeCBURL                  Code = 26
	CodeCBMethod               Code = 27
	CodeCBProtocol             Code = 28
	CodeCBVersion              Code = 29
	CodeCBStatus               Code = 30
	CodeCBHeaderField          Code = 31
	CodeCBHeaderValue          Code = 32
	CodeCBHeadersComplete      Code = 33
	CodeCBBody                 Code = 34
	CodeCBMessageComplete      Code = 35
	CodeCBChunkHeader          Code = 36
	CodeCBChunkComplete        Code = 37
	CodeCBChunkExtensionName   Code = 38
	CodeCBChunkExtensionValue  Code = 39
	CodeCBReset                Code = 40
)

// name table, keyed by Code; mirrors HPE_* symbolic names used by
// production http/1.x parsers (see spec.md §6/§7).
var names = map[Code]string{
	CodeOK:                              "HPE_OK",
	CodeInvalidMethod:                   "HPE_INVALID_METHOD",
	CodeInvalidURL:                      "HPE_INVALID_URL",
	CodeInvalidVersion:                  "HPE_INVALID_VERSION",
	CodeInvalidHeaderToken:              "HPE_INVALID_HEADER_TOKEN",
	CodeInvalidContentLength:            "HPE_INVALID_CONTENT_LENGTH",
	CodeInvalidTransferEncoding:         "HPE_INVALID_TRANSFER_ENCODING",
	CodeInvalidChunkSize:                "HPE_INVALID_CHUNK_SIZE",
	CodeInvalidStatus:                   "HPE_INVALID_STATUS",
	CodeUnexpectedContentLengthAfterTE:  "HPE_UNEXPECTED_CONTENT_LENGTH",
	CodeClosedConnection:                "HPE_CLOSED_CONNECTION",
	CodeInvalidEOFState:                 "HPE_INVALID_EOF_STATE",
	CodeHeaderOverflow:                  "HPE_HEADER_OVERFLOW",
	CodeUnexpectedCharacter:             "HPE_UNEXPECTED_CHARACTER",
	CodeStrictViolation:                 "HPE_STRICT",
	CodeCBMessageBegin:                  "HPE_CB_MESSAGE_BEGIN",
	CodeCBURL:                           "HPE_CB_URL",
	CodeCBMethod:                        "HPE_CB_METHOD",
	CodeCBProtocol:                      "HPE_CB_PROTOCOL",
	CodeCBVersion:                       "HPE_CB_VERSION",
	CodeCBStatus:                        "HPE_CB_STATUS",
	CodeCBHeaderField:                   "HPE_CB_HEADER_FIELD",
	CodeCBHeaderValue:                   "HPE_CB_HEADER_VALUE",
	CodeCBHeadersComplete:               "HPE_CB_HEADERS_COMPLETE",
	CodeCBBody:                          "HPE_CB_BODY",
	CodeCBMessageComplete:               "HPE_CB_MESSAGE_COMPLETE",
	CodeCBChunkHeader:                   "HPE_CB_CHUNK_HEADER",
	CodeCBChunkComplete:                 "HPE_CB_CHUNK_COMPLETE",
	CodeCBChunkExtensionName:            "HPE_CB_CHUNK_EXTENSION_NAME",
	CodeCBChunkExtensionValue:           "HPE_CB_CHUNK_EXTENSION_VALUE",
	CodeCBReset:                         "HPE_CB_RESET",
	CodePaused:                          "HPE_PAUSED",
	CodePausedUpgrade:                   "HPE_PAUSED_UPGRADE",
	CodeUser:                            "HPE_USER",
}

// Error is the single error type surfaced by Parse/Finish across the
// automaton, facade and messages-driver layers (spec §6, §7).
type Error struct {
	Code   Code
	Name   string
	Reason string
}

// New builds an Error for code, filling Name from the stable table and
// attaching reason (may be empty).
func New(code Code, reason string) *Error {
	return &Error{Code: code, Name: names[code], Reason: reason}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// Is reports structural equality by (Code, Name, Reason), per spec §6
// ("Error values are equality-comparable by (code, name, reason)").
func (e *Error) Is(target error) bool {
	o, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == o.Code && e.Name == o.Name && e.Reason == o.Reason
}

// Paused reports whether err is one of the two resumable suspensions
// (HPE_PAUSED / HPE_PAUSED_UPGRADE), as opposed to a sticky terminal error.
func Paused(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Code == CodePaused || e.Code == CodePausedUpgrade
}
