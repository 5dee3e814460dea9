package usecase

import (
	"context"
	"log/slog"

	"github.com/trebuchet-org/lockgov/internal/domain/events"
)

// unitOfWork bundles what every mutating use case needs: the store, the
// audit sink, the clock and a logger.
type unitOfWork struct {
	store Store
	sink  EventSink
	clock Clock
	log   *slog.Logger
}

func newUnitOfWork(store Store, sink EventSink, clock Clock, log *slog.Logger, component string) unitOfWork {
	return unitOfWork{
		store: store,
		sink:  sink,
		clock: clock,
		log:   log.With("usecase", component),
	}
}

// commit runs fn in one Update and publishes the returned events once the
// writes are durable. Events of a failed unit are dropped.
func (u unitOfWork) commit(ctx context.Context, fn func(tx Tx, now int64) ([]events.Event, error)) ([]events.Event, error) {
	now := u.clock.Now()

	var evts []events.Event
	err := u.store.Update(ctx, func(tx Tx) error {
		var err error
		evts, err = fn(tx, now)
		return err
	})
	if err != nil {
		u.log.DebugContext(ctx, "unit of work rolled back", "error", err)
		return nil, err
	}

	if err := u.sink.Publish(ctx, evts); err != nil {
		u.log.WarnContext(ctx, "failed to publish audit events", "error", err, "count", len(evts))
	}
	return evts, nil
}
