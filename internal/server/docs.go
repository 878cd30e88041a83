package server

import "sort"

type commandMetadata struct {
	arity    int      // Arity includes the command name itself, negative means "at least"
	flags    []string // readonly, write, fast
	firstKey int      // 1-based index of the key argument, 0 for keyless commands
}

var commandRegistry = map[string]commandMetadata{
	"ping":   {-1, []string{"fast", "stale"}, 0},
	"all":    {1, []string{"readonly"}, 0},
	"dbsize": {1, []string{"readonly", "fast"}, 0},
	"get":    {2, []string{"readonly", "fast"}, 1},
	"set":    {-3, []string{"write", "denyoom"}, 1},
	"del":    {2, []string{"write"}, 1},
	"incr":   {2, []string{"write", "denyoom", "fast"}, 1},
	"zadd":   {4, []string{"write", "denyoom", "fast"}, 1},
	"zcard":  {2, []string{"readonly", "fast"}, 1},
	"zrank":  {3, []string{"readonly", "fast"}, 1},
	"zrange": {4, []string{"readonly"}, 1},
}

// commandDoc stores a description for the command
type commandDoc struct {
	summary    string
	complexity string
	group      string
}

// commandDocsRegistry documentation registry
var commandDocsRegistry = map[string]commandDoc{
	"ping": {
		summary:    "Ping the server.",
		complexity: "O(1)",
		group:      "connection",
	},
	"all": {
		summary:    "Return every live key with its value.",
		complexity: "O(N) where N is the number of elements in the keyspace.",
		group:      "generic",
	},
	"dbsize": {
		summary:    "Return the number of scalars plus the number of sorted set members.",
		complexity: "O(N) where N is the number of keys.",
		group:      "server",
	},
	"get": {
		summary:    "Get the value of a key.",
		complexity: "O(1)",
		group:      "string",
	},
	"set": {
		summary:    "Set the string value of a key, optionally with an expiry in seconds.",
		complexity: "O(1)",
		group:      "string",
	},
	"del": {
		summary:    "Delete a key.",
		complexity: "O(1) for strings, O(M) for sorted sets with M members.",
		group:      "generic",
	},
	"incr": {
		summary:    "Increment the integer value of a key by one.",
		complexity: "O(1)",
		group:      "string",
	},
	"zadd": {
		summary:    "Add a member to a sorted set, or update its score if it already exists.",
		complexity: "O(N) where N is the number of members in the sorted set.",
		group:      "sorted-set",
	},
	"zcard": {
		summary:    "Get the number of members in a sorted set.",
		complexity: "O(1)",
		group:      "sorted-set",
	},
	"zrank": {
		summary:    "Determine the index of a member in a sorted set.",
		complexity: "O(log(N))",
		group:      "sorted-set",
	},
	"zrange": {
		summary:    "Return a range of members in a sorted set, by index.",
		complexity: "O(log(N)+M) with M the number of elements returned.",
		group:      "sorted-set",
	},
}

// CommandInfo describes a registered command
type CommandInfo struct {
	Name       string
	Arity      int
	Flags      []string
	Summary    string
	Complexity string
	Group      string
}

// hasFlag reports whether the command is registered with flag
func hasFlag(name, flag string) bool {
	for _, f := range commandRegistry[name].flags {
		if f == flag {
			return true
		}
	}
	return false
}

// arityOK checks the argument count against the registered arity. argc excludes the command name
func arityOK(name string, argc int) bool {
	arity := commandRegistry[name].arity
	if arity < 0 {
		return argc+1 >= -arity
	}
	return argc+1 == arity
}

// commandInfos returns the documentation of every command sorted by name
func commandInfos() []CommandInfo {
	infos := make([]CommandInfo, 0, len(commandRegistry))
	for name, meta := range commandRegistry {
		doc := commandDocsRegistry[name]
		infos = append(infos, CommandInfo{
			Name:       name,
			Arity:      meta.arity,
			Flags:      append([]string(nil), meta.flags...),
			Summary:    doc.summary,
			Complexity: doc.complexity,
			Group:      doc.group,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
