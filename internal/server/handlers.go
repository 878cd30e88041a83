package server

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eternalApril/greenis/internal/storage"
)

// ping replies with a fixed token, or echoes its single argument
func ping(ctx *commandContext) Result {
	switch len(ctx.args) {
	case 0:
		return ok("pong")
	case 1:
		return ok(ctx.args[0])
	default:
		return wrongNumberOfArguments(ctx.name)
	}
}

// all returns every live entry. Scalars map to string, sorted sets to []storage.Member
func all(ctx *commandContext) Result {
	snapshot := ctx.storage.Snapshot()

	out := make(map[string]any, len(snapshot))
	for key, ent := range snapshot {
		switch ent.Type {
		case storage.TypeString:
			out[key] = ent.Str
		case storage.TypeZSet:
			out[key] = ent.ZSet.Members()
		}
	}

	return ok(out)
}

func dbsize(ctx *commandContext) Result {
	return ok(ctx.storage.Size())
}

func get(ctx *commandContext) Result {
	val, err := ctx.storage.Get(ctx.args[0])
	if err != nil {
		return fromStorageError(err, nil)
	}
	return ok(val)
}

// set handles SET key value [EX seconds]
func set(ctx *commandContext) Result {
	key, value := ctx.args[0], ctx.args[1]
	var options storage.SetOptions

	switch len(ctx.args) {
	case 2:
	case 3:
		if strings.EqualFold(ctx.args[2], "EX") {
			return badArgument(ErrWrongArguments)
		}
		return badArgument(ErrSyntax)
	case 4:
		if !strings.EqualFold(ctx.args[2], "EX") {
			return badArgument(ErrSyntax)
		}

		ttl, err := parseExpire(ctx.args[3])
		if err != nil {
			return badArgument(err)
		}
		options = storage.SetOptions{TTL: ttl, Expire: true}
	default:
		return badArgument(ErrSyntax)
	}

	ctx.storage.Set(key, value, options)
	return created("OK")
}

// parseExpire converts the EX argument, a non-negative number of seconds, to a duration
func parseExpire(s string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, ErrNotFloat
	}

	// the absolute deadline must still fit in unix nanoseconds
	if seconds < 0 || seconds > float64(math.MaxInt64-time.Now().UnixNano())/float64(time.Second) {
		return 0, ErrInvalidExpire
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

func del(ctx *commandContext) Result {
	if ctx.storage.Delete(ctx.args[0]) {
		return ok(1)
	}
	return notFound(0)
}

func incr(ctx *commandContext) Result {
	n, isNew, err := ctx.storage.Incr(ctx.args[0])
	if err != nil {
		return fromStorageError(err, nil)
	}

	val := strconv.FormatInt(n, 10)
	if isNew {
		return created(val)
	}
	return ok(val)
}

// zadd handles ZADD key score member
func zadd(ctx *commandContext) Result {
	key, rawScore, member := ctx.args[0], ctx.args[1], ctx.args[2]

	if rawScore == "" || member == "" {
		return wrongNumberOfArguments(ctx.name)
	}

	score, err := strconv.ParseFloat(rawScore, 64)
	if err != nil || math.IsNaN(score) {
		return badArgument(ErrNotFloat)
	}

	added, _, err := ctx.storage.ZAdd(key, score, member)
	if err != nil {
		return fromStorageError(err, nil)
	}
	return created(added)
}

func zcard(ctx *commandContext) Result {
	n, err := ctx.storage.ZCard(ctx.args[0])
	if err != nil {
		return fromStorageError(err, 0)
	}
	return ok(n)
}

func zrank(ctx *commandContext) Result {
	rank, err := ctx.storage.ZRank(ctx.args[0], ctx.args[1])
	if err != nil {
		return fromStorageError(err, nil)
	}
	return ok(rank)
}

// zrange handles ZRANGE key start stop
func zrange(ctx *commandContext) Result {
	start, errStart := strconv.Atoi(ctx.args[1])
	stop, errStop := strconv.Atoi(ctx.args[2])
	if errStart != nil || errStop != nil {
		return badArgument(ErrRangeNotNumber)
	}

	names, err := ctx.storage.ZRange(ctx.args[0], start, stop)
	if err != nil {
		return fromStorageError(err, []string{})
	}
	return ok(names)
}

// fromStorageError maps storage errors to results. absent is the payload reported for a missing key
func fromStorageError(err error, absent any) Result {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(absent)
	}
	// WRONGTYPE, not an integer, or a corrupted entry
	return typeError(err)
}
