package declsql

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchMethod = errors.New("no such method")
	ErrMissingArg   = errors.New("missing argument")
	ErrClosed       = errors.New("connection closed")
)

// ConfigError aborts construction: a bad method definition, a reserved
// name collision, or a shape the dialect cannot serve.
type ConfigError struct {
	Method string
	msg    string
}

func (e *ConfigError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("method %s: %s", e.Method, e.msg)
	}
	return e.msg
}

// ConnectError aborts construction when the initial connect fails.
type ConnectError struct {
	Driver string
	err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Driver, e.err)
}

func (e *ConnectError) Unwrap() error {
	return e.err
}

// OpError is a per-call failure. It is recorded in the connection's
// error state and does not poison the connection.
type OpError struct {
	Method string
	Stage  string
	err    error
}

func (e *OpError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("method %s: %s: %v", e.Method, e.Stage, e.err)
	}
	return fmt.Sprintf("method %s: %v", e.Method, e.err)
}

func (e *OpError) Unwrap() error {
	return e.err
}
