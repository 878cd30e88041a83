package resp_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/eternalApril/greenis/internal/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Write(t *testing.T) {
	tests := []struct {
		name  string
		input resp.Value
		want  string
	}{
		{"Counter", resp.MakeInteger(42), ":42\r\n"},
		{"Negative counter", resp.MakeInteger(-7), ":-7\r\n"},
		{"Rank zero", resp.MakeInteger(0), ":0\r\n"},
		{"SET acknowledgement", resp.MakeSimpleString("OK"), "+OK\r\n"},
		{"WRONGTYPE", resp.MakeError("WRONGTYPE Operation against a key holding the wrong kind of value"),
			"-WRONGTYPE Operation against a key holding the wrong kind of value\r\n"},
		{"Scalar value", resp.MakeBulkString("chave"), "$5\r\nchave\r\n"},
		{"Empty scalar", resp.MakeBulkString(""), "$0\r\n\r\n"},
		{"Binary scalar", resp.MakeBulkString("a\r\nb"), "$4\r\na\r\nb\r\n"},
		{"Missing key", resp.MakeNilBulkString(), "$-1\r\n"},
		{"ZRANGE members", resp.MakeBulkArray([]string{"minxo", "catorro"}), "*2\r\n$5\r\nminxo\r\n$7\r\ncatorro\r\n"},
		{"Empty range", resp.MakeBulkArray([]string{}), "*0\r\n"},
		{"Null array", resp.Value{Type: resp.TypeArray, IsNull: true}, "*-1\r\n"},
		{
			"Keyspace dump",
			resp.MakeArray([]resp.Value{
				resp.MakeBulkString("s"),
				resp.MakeBulkString("v"),
				resp.MakeBulkString("z"),
				resp.MakeBulkArray([]string{"a", "1.5"}),
			}),
			"*4\r\n$1\r\ns\r\n$1\r\nv\r\n$1\r\nz\r\n*2\r\n$1\r\na\r\n$3\r\n1.5\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := resp.NewEncoder(&buf)

			require.NoError(t, enc.Write(tt.input))
			assert.Zero(t, buf.Len(), "nothing reaches the stream before Flush")

			require.NoError(t, enc.Flush())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// pipelined replies are written back to back and leave in one flush
func TestEncoder_Pipeline(t *testing.T) {
	var buf bytes.Buffer
	enc := resp.NewEncoder(&buf)

	require.NoError(t, enc.Write(resp.MakeSimpleString("OK")))
	require.NoError(t, enc.Write(resp.MakeInteger(2)))
	require.NoError(t, enc.Write(resp.MakeNilBulkString()))
	require.NoError(t, enc.Flush())

	assert.Equal(t, "+OK\r\n:2\r\n$-1\r\n", buf.String())
}

func TestEncoder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := resp.NewEncoder(&buf)

	in := resp.MakeBulkArray([]string{"zadd", "board", "1.5", "ana"})
	require.NoError(t, enc.Write(in))
	require.NoError(t, enc.Flush())

	out, err := resp.NewDecoder(&buf).Read()
	require.NoError(t, err)
	require.Len(t, out.Array, 4)
	assert.Equal(t, "board", string(out.Array[1].String))
	assert.Equal(t, "ana", string(out.Array[3].String))
}

func TestEncoder_FlushError(t *testing.T) {
	enc := resp.NewEncoder(brokenWriter{})

	require.NoError(t, enc.Write(resp.MakeSimpleString("OK")), "buffered writes do not touch the stream")
	assert.ErrorIs(t, enc.Flush(), io.ErrClosedPipe)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}
