package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/turismap/internal/core/ports"
)

// publishTimeout bounds a single event publish. Events are best effort.
const publishTimeout = 2 * time.Second

// dispatcher publishes events in the background so a slow or disconnected
// broker never delays the request that produced them.
type dispatcher struct {
	publisher ports.EventPublisher
	timeout   time.Duration
	pending   sync.WaitGroup
}

func newDispatcher(publisher ports.EventPublisher) *dispatcher {
	return &dispatcher{publisher: publisher, timeout: publishTimeout}
}

// dispatch runs publish on its own goroutine. The context keeps the caller's
// values (trace, request id) but not its cancellation.
func (d *dispatcher) dispatch(ctx context.Context, kind string, publish func(context.Context, ports.EventPublisher) error) {
	if d.publisher == nil {
		return
	}
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := publish(pctx, d.publisher); err != nil {
			slog.WarnContext(pctx, "publish event failed", "kind", kind, "error", err)
		}
	}()
}

// wait blocks until every dispatched publish has finished.
func (d *dispatcher) wait() {
	d.pending.Wait()
}
