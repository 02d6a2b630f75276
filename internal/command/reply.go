// Package command implements the tiered command execution core: per-kind
// commanders resolving answers from the write buffer, the local cache and
// the backend store, in that order.
package command

import (
	"errors"
	"strings"

	"github.com/redkv-io/redkv/internal/types"
)

// Reply is the protocol-level answer to one command.
type Reply interface {
	isReply()
}

// IntegerReply carries a RESP integer.
type IntegerReply struct {
	Value int64
}

func (*IntegerReply) isReply() {}

// Shared integer replies for the common boolean answers.
var (
	ReplyZero = &IntegerReply{Value: 0}
	ReplyOne  = &IntegerReply{Value: 1}
)

// NewIntegerReply returns a reply for v, reusing the shared 0/1 replies.
func NewIntegerReply(v int64) *IntegerReply {
	switch v {
	case 0:
		return ReplyZero
	case 1:
		return ReplyOne
	default:
		return &IntegerReply{Value: v}
	}
}

// BulkReply carries a RESP bulk string. A nil Value is the null bulk.
type BulkReply struct {
	Value []byte
}

func (*BulkReply) isReply() {}

// NilBulkReply is the shared null bulk reply.
var NilBulkReply = &BulkReply{}

// MultiBulkReply carries a RESP array of replies.
type MultiBulkReply struct {
	Replies []Reply
}

func (*MultiBulkReply) isReply() {}

// EmptyMultiBulkReply is the shared empty array reply.
var EmptyMultiBulkReply = &MultiBulkReply{}

// StatusReply carries a RESP simple string.
type StatusReply struct {
	Status string
}

func (*StatusReply) isReply() {}

// OKReply is the shared +OK reply.
var OKReply = &StatusReply{Status: "OK"}

// ErrorReply carries a RESP error line.
type ErrorReply struct {
	Message string
}

func (*ErrorReply) isReply() {}

func (r *ErrorReply) Error() string {
	return r.Message
}

// Shared protocol errors.
var (
	WrongTypeReply     = &ErrorReply{Message: "WRONGTYPE Operation against a key holding the wrong kind of value"}
	SyntaxErrorReply   = &ErrorReply{Message: "ERR syntax error"}
	InternalErrorReply = &ErrorReply{Message: "ERR command execute error"}
)

// WrongArgsReply builds the arity error for a command name.
func WrongArgsReply(name string) *ErrorReply {
	return &ErrorReply{Message: "ERR wrong number of arguments for '" + strings.ToLower(name) + "' command"}
}

// errorReply converts an internal error into its protocol form. Type
// mismatches map to WRONGTYPE; everything else is surfaced under ERR.
func errorReply(err error) *ErrorReply {
	if types.IsWrongType(err) {
		return WrongTypeReply
	}
	var reply *ErrorReply
	if errors.As(err, &reply) {
		return reply
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "ERR") || strings.HasPrefix(msg, "WRONGTYPE") {
		return &ErrorReply{Message: msg}
	}
	return &ErrorReply{Message: "ERR " + msg}
}
