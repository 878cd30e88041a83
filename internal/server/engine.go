package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eternalApril/greenis/internal/storage"
	"go.uber.org/zap"
)

// Engine coordinates the execution of commands against the keyspace
type Engine struct {
	commands map[string]command // Registry of available commands (the key is the command name in lowercase)
	storage  storage.Storage    // Interface to the underlying keyspace
	logger   *zap.Logger
}

// NewEngine initializes the engine and registers the command set
func NewEngine(s storage.Storage, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		commands: make(map[string]command),
		storage:  s,
		logger:   logger,
	}
	engine.registerBasicCommand()

	return engine
}

// register adds a new command to the engine. The command name is lowercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToLower(name)] = cmd
}

// registerBasicCommand fills the registry with the supported commands
func (e *Engine) registerBasicCommand() {
	e.register("ping", commandFunc(ping))
	e.register("all", commandFunc(all))
	e.register("dbsize", commandFunc(dbsize))
	e.register("get", commandFunc(get))
	e.register("set", commandFunc(set))
	e.register("del", commandFunc(del))
	e.register("incr", commandFunc(incr))
	e.register("zadd", commandFunc(zadd))
	e.register("zcard", commandFunc(zcard))
	e.register("zrank", commandFunc(zrank))
	e.register("zrange", commandFunc(zrange))
}

// IsValidCommand reports whether name belongs to the command set. The check is case-insensitive
func (e *Engine) IsValidCommand(name string) bool {
	_, ok := e.commands[strings.ToLower(name)]
	return ok
}

// Commands returns the documentation of the registered commands sorted by name
func (e *Engine) Commands() []CommandInfo {
	return commandInfos()
}

// Execute finds the command by name and executes it with the passed arguments.
// Unknown names and wrong argument counts are rejected before the command runs
func (e *Engine) Execute(name string, args ...string) Result {
	name = strings.ToLower(name)

	if e.logger.Core().Enabled(zap.DebugLevel) {
		// Log the command name and number of args
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("args_count", len(args)),
			zap.Bool("write", hasFlag(name, "write")),
		)
	}

	cmd, ok := e.commands[name]
	if !ok {
		return typeError(fmt.Errorf("%w '%s'", ErrUnknownCommand, name))
	}

	if !arityOK(name, len(args)) {
		return wrongNumberOfArguments(name)
	}

	if commandRegistry[name].firstKey > 0 && args[commandRegistry[name].firstKey-1] == "" {
		return badArgument(ErrEmptyKey)
	}

	res := cmd.execute(&commandContext{
		name:    name,
		args:    args,
		storage: e.storage,
	})

	if errors.Is(res.Err, storage.ErrCorrupted) {
		e.logger.Error("keyspace invariant violated", zap.String("cmd", name), zap.Error(res.Err))
	}

	return res
}
