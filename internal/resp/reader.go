package resp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	ErrInvalidEnding  = errors.New("invalid line ending")
	ErrInvalidLength  = errors.New("invalid length")
	ErrUnexpectedType = errors.New("unexpected type")
)

// maxBulkLength limits a single bulk string, the same bound as proto-max-bulk-len
const maxBulkLength = 512 * 1024 * 1024

// Decoder reads RESP values from an input stream
type Decoder struct {
	rd *bufio.Reader
}

// NewDecoder initializes a Decoder with a buffered reader
func NewDecoder(rd io.Reader) *Decoder {
	return &Decoder{rd: bufio.NewReader(rd)}
}

// Buffered returns the number of bytes already read from the stream and not yet decoded
func (d *Decoder) Buffered() int {
	return d.rd.Buffered()
}

// Read decodes the next value
func (d *Decoder) Read() (Value, error) {
	_type, err := d.rd.ReadByte()
	if err != nil {
		return Value{}, err
	}

	val := Value{
		Type: _type,
	}

	switch val.Type {
	case TypeSimpleString, TypeError:
		str, err := d.readLine()
		if err != nil {
			return Value{}, err
		}

		val.String = str
		return val, nil
	case TypeInteger:
		num, err := d.readInteger()
		if err != nil {
			return Value{}, err
		}

		val.Integer = num
		return val, nil
	case TypeBulkString:
		return d.readBulkString()
	case TypeArray:
		return d.readArray()
	}

	return Value{}, fmt.Errorf("%w: %q", ErrUnexpectedType, _type)
}

// readLine reads a line and strips CRLF
func (d *Decoder) readLine() ([]byte, error) {
	line, err := d.rd.ReadBytes('\n')
	if err != nil {
		return nil, err
	}

	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrInvalidEnding
	}

	return line[:len(line)-2], nil
}

func (d *Decoder) readInteger() (int64, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}

	// Command with integer cant be empty
	if len(line) == 0 {
		return 0, ErrInvalidEnding
	}

	return strconv.ParseInt(string(line), 10, 64)
}

func (d *Decoder) readBulkString() (Value, error) {
	n, err := d.readInteger()
	if err != nil {
		return Value{}, err
	}

	if n == -1 {
		return MakeNilBulkString(), nil
	}
	if n < 0 || n > maxBulkLength {
		return Value{}, ErrInvalidLength
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(d.rd, buf); err != nil {
		return Value{}, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Value{}, ErrInvalidEnding
	}

	return MakeBulkString(string(buf[:n])), nil
}

func (d *Decoder) readArray() (Value, error) {
	n, err := d.readInteger()
	if err != nil {
		return Value{}, err
	}

	if n == -1 {
		return Value{Type: TypeArray, IsNull: true}, nil
	}
	if n < 0 {
		return Value{}, ErrInvalidLength
	}

	vals := make([]Value, 0, min(n, 1024))
	for i := int64(0); i < n; i++ {
		v, err := d.Read()
		if err != nil {
			return Value{}, err
		}
		vals = append(vals, v)
	}

	return MakeArray(vals), nil
}
