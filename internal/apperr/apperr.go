// Package apperr defines the error taxonomy workflows and handlers use to
// decide what a failure looks like on the wire (spec §7).
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the purposes of client-visible surfacing.
// ToolError/SchemaError never reach the client as analysis_error events;
// they are folded into a tool result and the loop continues.
type Kind string

const (
	KindTransport Kind = "transport"
	KindTool      Kind = "tool"
	KindSchema    Kind = "schema"
	KindBusy      Kind = "busy"
	KindNotFound  Kind = "not_found"
	KindParse     Kind = "parse"
	KindRoundLimit Kind = "round_limit"
)

// Error is a classified, wrapped error. Workflows inspect Kind to decide
// whether to emit an analysis_error, fold into a tool result, or proceed
// with degraded output (ParseError).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Transport(message string, err error) *Error { return New(KindTransport, message, err) }
func NotFound(message string) *Error             { return New(KindNotFound, message, nil) }
func Busy(message string) *Error                 { return New(KindBusy, message, nil) }
func Schema(message string, err error) *Error    { return New(KindSchema, message, err) }
func Tool(message string, err error) *Error      { return New(KindTool, message, err) }
func Parse(message string, err error) *Error     { return New(KindParse, message, err) }
func RoundLimit(message string) *Error           { return New(KindRoundLimit, message, nil) }

// KindOf extracts the Kind of a wrapped Error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
