package server

import (
	"github.com/eternalApril/greenis/internal/storage"
)

type commandContext struct {
	name    string
	args    []string
	storage storage.Storage
}

type command interface {
	execute(ctx *commandContext) Result
}

type commandFunc func(ctx *commandContext) Result

func (c commandFunc) execute(ctx *commandContext) Result {
	return c(ctx)
}
