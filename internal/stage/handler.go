// Package stage defines the contract between the workflow manager and the
// pipeline stage handlers.
package stage

import (
	"context"

	"pausetrim/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
