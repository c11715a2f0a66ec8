package runtime

import (
	"context"
	"fmt"
	"ipk-chat/contract"
	"ipk-chat/domain"
	"ipk-chat/errors"
	"log/slog"
	"sync"
)

// Broadcaster fans one line out to the other members of the sender's room.
//
// Every recipient is written in its own goroutine, so a slow or segmented
// delivery to one member doesn't delay the others. Broadcast only returns once
// every recipient has been handled, which keeps the messages of one sender in
// order for each recipient. Write failures are logged and reported, the
// fan-out always completes.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

func (b *Broadcaster) Broadcast(ctx context.Context, sender *domain.Session, line []byte, delivery domain.Delivery) domain.Report {
	room := sender.Room()
	recipients := b.registry.MembersExcluding(room, sender)
	report := domain.Report{Recipients: len(recipients)}
	if len(recipients) == 0 {
		return report
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, recipient := range recipients {
		wg.Add(1)
		go func(recipient *domain.Session) {
			defer wg.Done()
			if err := recipient.Deliver(ctx, line, delivery); err != nil {
				err = fmt.Errorf("%w: %w", errors.ErrDelivery, err)
				b.log.Warn("Broadcast to room member failed",
					"session", recipient.ID,
					"remote", recipient.RemoteAddr,
					"room", room,
					"error", err)
				mu.Lock()
				report.Failures = append(report.Failures, domain.DeliveryFailure{SessionID: recipient.ID, Err: err})
				mu.Unlock()
			}
		}(recipient)
	}
	wg.Wait()

	b.log.Debug("Broadcast done",
		"session", sender.ID,
		"room", room,
		"recipients", report.Recipients,
		"failed", len(report.Failures),
		"segmented", delivery.IsSegmented())
	return report
}
