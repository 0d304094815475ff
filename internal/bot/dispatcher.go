package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"tulumreporta/backend/internal/models"
)

// EventHandler consumes one inbound event to completion.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev models.InboundEvent) error
}

// Dispatcher fans inbound events out to one worker goroutine per reporter,
// so events for the same reporter are processed strictly in arrival order
// while different reporters proceed independently. The transport can ack a
// delivery as soon as the event is on IncomingCh.
type Dispatcher struct {
	Handler    EventHandler
	IncomingCh chan models.InboundEvent

	Timeout time.Duration

	mu        sync.Mutex
	mailboxes map[string]chan models.InboundEvent
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose per-event handling is bounded by
// timeout.
func NewDispatcher(handler EventHandler, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		Handler:    handler,
		IncomingCh: make(chan models.InboundEvent, 64),
		Timeout:    timeout,
		mailboxes:  make(map[string]chan models.InboundEvent),
	}
}

// Run routes events to per-reporter mailboxes until IncomingCh is closed,
// then drains the workers.
func (d *Dispatcher) Run() {
	for ev := range d.IncomingCh {
		d.mailbox(ev.ReporterID) <- ev
	}

	d.mu.Lock()
	for _, box := range d.mailboxes {
		close(box)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) mailbox(reporterID string) chan models.InboundEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	box, ok := d.mailboxes[reporterID]
	if !ok {
		box = make(chan models.InboundEvent, 16)
		d.mailboxes[reporterID] = box
		d.wg.Add(1)
		go d.worker(box)
	}
	return box
}

func (d *Dispatcher) worker(box chan models.InboundEvent) {
	defer d.wg.Done()
	for ev := range box {
		d.process(ev)
	}
}

// process is the top of the event-handling boundary: panics and errors are
// logged here and never take the listener down.
func (d *Dispatcher) process(ev models.InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Panic handling event from %s: %v", ev.ReporterID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()

	if err := d.Handler.HandleEvent(ctx, ev); err != nil {
		log.Printf("ERROR: Event from %s failed: %v", ev.ReporterID, err)
	}
}
