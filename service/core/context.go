package core

import (
	"context"

	"github.com/ximlor/inv-nbs/service/tables"
)

type ServiceContext struct {
	Context context.Context
	Source  tables.Source
	Sink    tables.Sink
}
