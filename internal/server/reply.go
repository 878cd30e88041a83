package server

import (
	"sort"
	"strconv"

	"github.com/eternalApril/greenis/internal/resp"
	"github.com/eternalApril/greenis/internal/storage"
)

// Reply converts the result of command name into a RESP value
func Reply(name string, res Result) resp.Value {
	if res.Err != nil {
		return resp.MakeError(res.Err.Error())
	}

	switch p := res.Payload.(type) {
	case nil:
		return resp.MakeNilBulkString()
	case string:
		switch name {
		case "set", "ping":
			if p == "OK" || p == "pong" {
				return resp.MakeSimpleString(p)
			}
		case "incr":
			if n, err := strconv.ParseInt(p, 10, 64); err == nil {
				return resp.MakeInteger(n)
			}
		}
		return resp.MakeBulkString(p)
	case int:
		return resp.MakeInteger(int64(p))
	case []string:
		return resp.MakeBulkArray(p)
	case map[string]any:
		return replyKeyspace(p)
	default:
		return resp.MakeError("ERR unsupported reply type")
	}
}

// replyKeyspace flattens the ALL payload into key, value pairs ordered by key.
// Sorted sets become nested arrays of member, score
func replyKeyspace(entries map[string]any) resp.Value {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]resp.Value, 0, len(keys)*2)
	for _, key := range keys {
		out = append(out, resp.MakeBulkString(key))

		switch v := entries[key].(type) {
		case string:
			out = append(out, resp.MakeBulkString(v))
		case []storage.Member:
			flat := make([]string, 0, len(v)*2)
			for _, m := range v {
				flat = append(flat, m.Name, strconv.FormatFloat(m.Score, 'g', -1, 64))
			}
			out = append(out, resp.MakeBulkArray(flat))
		default:
			out = append(out, resp.MakeNilBulkString())
		}
	}

	return resp.MakeArray(out)
}
