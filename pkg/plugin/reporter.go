// Package plugin defines plugin interfaces.
package plugin

import (
	"context"

	"firestige.xyz/chatsniff/internal/core"
)

// Reporter delivers broadcast events to an external sink.
type Reporter interface {
	Plugin
	Report(ctx context.Context, evt *core.BroadcastEvent) error
	Flush(ctx context.Context) error
}
