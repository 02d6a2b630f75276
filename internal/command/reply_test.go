package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redkv-io/redkv/internal/types"
)

func TestNewIntegerReplySharesCommonValues(t *testing.T) {
	assert.Same(t, ReplyZero, NewIntegerReply(0))
	assert.Same(t, ReplyOne, NewIntegerReply(1))
	assert.Equal(t, int64(42), NewIntegerReply(42).Value)
}

func TestErrorReplyConversion(t *testing.T) {
	assert.Same(t, WrongTypeReply, errorReply(types.ErrWrongType))
	assert.Same(t, WrongTypeReply, errorReply(types.NewKvError("hget", "k", types.ErrWrongType)))

	reply := errorReply(errors.New("backend gone"))
	assert.Equal(t, "ERR backend gone", reply.Message)

	reply = errorReply(errors.New("ERR already prefixed"))
	assert.Equal(t, "ERR already prefixed", reply.Message)
}

func TestWrongArgsReply(t *testing.T) {
	assert.Equal(t, "ERR wrong number of arguments for 'hset' command", WrongArgsReply("HSET").Message)
}
