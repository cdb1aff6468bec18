package notification

import (
	"context"
	"errors"

	"busreserve/models"
)

// Dispatcher relays booking lifecycle events to an outbound channel.
// Callers log failures; a dispatch error never undoes a committed transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.Event) error
}

// Fanout delivers each event to every dispatcher and joins their errors.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, event models.Event) error {
	var errs []error
	for _, d := range f {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
