package types

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongType is returned when a key holds a different structure than
	// the command expects. It maps to the RESP WRONGTYPE error.
	ErrWrongType = errors.New("kv: operation against a key holding the wrong kind of value")

	ErrClosed        = errors.New("kv: upstream closed")
	ErrInvalidArgs   = errors.New("kv: wrong number of arguments")
	ErrBackend       = errors.New("kv: backend store error")
	ErrMetaCorrupted = errors.New("kv: key meta corrupted")
)

// KvError wraps a failure from the KV backend or the meta layer with the
// operation and key it happened on.
type KvError struct {
	Op  string
	Key string
	Err error
}

func (e *KvError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("kv %s [%s]: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("kv %s: %v", e.Op, e.Err)
}

func (e *KvError) Unwrap() error {
	return e.Err
}

func NewKvError(op, key string, err error) *KvError {
	return &KvError{Op: op, Key: key, Err: err}
}

func IsWrongType(err error) bool {
	return errors.Is(err, ErrWrongType)
}

func IsBackend(err error) bool {
	return errors.Is(err, ErrBackend)
}
