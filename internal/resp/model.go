package resp

import (
	"errors"
	"strings"
)

// Type prefixes of RESP2
const (
	TypeSimpleString = '+'
	TypeError        = '-'
	TypeInteger      = ':'
	TypeBulkString   = '$'
	TypeArray        = '*'
)

// ErrNotCommand is returned by Command for anything but a non-null array of strings
var ErrNotCommand = errors.New("ERR Protocol error: expected array of bulk strings")

// Value is one decoded or to-be-encoded RESP2 element
type Value struct {
	String  []byte // SimpleString, Error, BulkString
	Array   []Value
	Integer int64
	Type    byte
	IsNull  bool // nil BulkString and nil Array
}

// Command splits a request into its lowercased name and its arguments.
// An empty array yields an empty name and no error, callers skip it
func (v Value) Command() (string, []string, error) {
	if v.Type != TypeArray || v.IsNull {
		return "", nil, ErrNotCommand
	}
	if len(v.Array) == 0 {
		return "", nil, nil
	}

	for _, el := range v.Array {
		if el.Type != TypeBulkString && el.Type != TypeSimpleString || el.IsNull {
			return "", nil, ErrNotCommand
		}
	}

	args := make([]string, len(v.Array)-1)
	for i, el := range v.Array[1:] {
		args[i] = string(el.String)
	}
	return strings.ToLower(string(v.Array[0].String)), args, nil
}
