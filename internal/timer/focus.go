package timer

import (
	"context"
	"log"
	"time"

	"adhdrpg/internal/engine"
)

// Dispatcher is satisfied by engine.Service.
type Dispatcher interface {
	Dispatch(ctx context.Context, a engine.Action) (engine.Outcome, error)
}

// FocusCountdown returns a countdown that dispatches COMPLETE_FOCUS_SESSION
// when it reaches zero.
func FocusCountdown(d Dispatcher, kind engine.FocusKind, minutes int, onTick func(time.Duration), onOutcome func(engine.Outcome)) Countdown {
	return Countdown{
		Name:     string(kind),
		Duration: time.Duration(minutes) * time.Minute,
		OnTick:   onTick,
		OnDone: func(ctx context.Context) {
			out, err := d.Dispatch(ctx, engine.CompleteFocusSession{Kind: kind, Minutes: minutes})
			if err != nil {
				log.Printf("[timer] complete %s session: %v", kind, err)
				return
			}
			if onOutcome != nil {
				onOutcome(out)
			}
		},
	}
}
