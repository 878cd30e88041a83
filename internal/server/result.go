package server

import (
	"errors"
	"fmt"
)

// Status is the outcome category of a command. The values mirror HTTP codes
// so an HTTP front end can pass them through unchanged
type Status int

const (
	StatusOK          Status = 200
	StatusCreated     Status = 201
	StatusBadArgument Status = 400
	StatusNotFound    Status = 404
	StatusTypeError   Status = 405
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCreated:
		return "created"
	case StatusBadArgument:
		return "bad argument"
	case StatusNotFound:
		return "not found"
	case StatusTypeError:
		return "type error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	ErrUnknownCommand         = errors.New("ERR unknown command")
	ErrWrongNumberOfArguments = errors.New("ERR wrong number of arguments")
	ErrWrongArguments         = errors.New("ERR wrong arguments")
	ErrSyntax                 = errors.New("ERR syntax error")
	ErrNotFloat               = errors.New("ERR value is not a valid float")
	ErrRangeNotNumber         = errors.New("ERR range argument is not a number")
	ErrInvalidExpire          = errors.New("ERR invalid expire time")
	ErrEmptyKey               = errors.New("ERR empty key")
)

// Result is what every command returns: a payload and its status.
// Err is set for BadArgument and TypeError results, Payload then holds the message
type Result struct {
	Payload any
	Status  Status
	Err     error
}

func ok(payload any) Result {
	return Result{Payload: payload, Status: StatusOK}
}

func created(payload any) Result {
	return Result{Payload: payload, Status: StatusCreated}
}

func notFound(payload any) Result {
	return Result{Payload: payload, Status: StatusNotFound}
}

func badArgument(err error) Result {
	return Result{Payload: err.Error(), Status: StatusBadArgument, Err: err}
}

func typeError(err error) Result {
	return Result{Payload: err.Error(), Status: StatusTypeError, Err: err}
}

func wrongNumberOfArguments(name string) Result {
	return badArgument(fmt.Errorf("%w for '%s' command", ErrWrongNumberOfArguments, name))
}
