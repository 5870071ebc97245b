// Package dispatch implements the ordered outbound request queue. Entries leave the queue strictly in
// submission order, one at a time; calls that need a game session id hold the whole queue until the
// backend has assigned one.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/glasslab/go-glsdk/glsdk/session"
	"github.com/splitio/go-toolkit/v5/datastructures/set"
	"github.com/splitio/go-toolkit/v5/logging"
)

// API keys that cannot be delivered without a game session id
var sessionGated = set.NewSet(constants.EndSession, constants.SaveTelemEvent)

// RequiresGameSession returns true if entries with the given API key wait for a game session id
func RequiresGameSession(apiKey string) bool {
	return sessionGated.Has(apiKey)
}

// Dispatcher drains the queue into a transport. At most one entry is in flight at a time.
type Dispatcher struct {
	queue    *entryQueue
	tracker  *session.Tracker
	remote   service.Transport
	local    service.Transport
	options  *conf.Store
	logger   logging.LoggerInterface
	mutex    sync.Mutex
	inFlight bool
	// stopped is the error queued entries fail with once Stop has been called
	stopped error
}

// NewDispatcher creates a dispatcher. Entries are sent through local instead of remote while
// the LocalLogging option is on.
func NewDispatcher(
	tracker *session.Tracker,
	remote service.Transport,
	local service.Transport,
	options *conf.Store,
	logger logging.LoggerInterface,
) *Dispatcher {
	return &Dispatcher{
		queue:   newEntryQueue(),
		tracker: tracker,
		remote:  remote,
		local:   local,
		options: options,
		logger:  logger,
	}
}

// Enqueue appends the entry to the tail of the queue. It never blocks. Once the dispatcher is
// stopped the entry fails right away with the stop reason.
func (d *Dispatcher) Enqueue(entry *Entry) {
	d.mutex.Lock()
	stopped := d.stopped
	if stopped == nil {
		d.queue.Push(entry)
	}
	d.mutex.Unlock()

	if stopped != nil {
		entry.result <- Result{Err: stopped}
	}
}

// Stop ends the dispatching. Every queued entry fails with reason and nothing else leaves the
// queue; the entry in flight, if any, completes normally.
func (d *Dispatcher) Stop(reason error) {
	d.mutex.Lock()
	if d.stopped != nil {
		d.mutex.Unlock()
		return
	}
	d.stopped = reason
	dropped := d.queue.PopAll()
	d.mutex.Unlock()

	if len(dropped) > 0 {
		d.logger.Warning(fmt.Sprintf("Dispatcher stopped, dropping %d queued entries", len(dropped)))
	}
	for _, entry := range dropped {
		entry.result <- Result{Err: reason}
	}
}

// Len returns the number of entries waiting in the queue, not counting the one in flight
func (d *Dispatcher) Len() int {
	return d.queue.Count()
}

// InFlight returns true while an entry is being delivered
func (d *Dispatcher) InFlight() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.inFlight
}

// Pending returns the queued entries in delivery order. The entries are still owned by the queue
// and must not be modified.
func (d *Dispatcher) Pending() []*Entry {
	return d.queue.Items()
}

// Tick delivers the head of the queue if it is deliverable. Remote deliveries complete in the
// background and tick again on success. In local mode entries are delivered synchronously and the
// queue is drained until it empties or blocks.
func (d *Dispatcher) Tick() {
	for {
		entry, local, ok := d.next()
		if !ok {
			return
		}

		if local {
			if !d.deliver(entry, d.local) {
				return
			}
			continue
		}

		go func() {
			if d.deliver(entry, d.remote) {
				d.Tick()
			}
		}()
		return
	}
}

// Flush is an immediate, out of schedule Tick
func (d *Dispatcher) Flush() {
	d.Tick()
}

// next pops the head if it can be delivered now and marks it in flight
func (d *Dispatcher) next() (*Entry, bool, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.inFlight || d.stopped != nil {
		return nil, false, false
	}

	head := d.queue.Front()
	if head == nil {
		return nil, false, false
	}

	local := d.options.Get().LocalLogging
	ids := d.tracker.IDs()
	if !local && ids.GameSessionID == "" && RequiresGameSession(head.APIKey) {
		d.logger.Debug(fmt.Sprintf("Dispatch queue blocked: %s waits for a game session id (%d queued)", head.APIKey, d.queue.Count()))
		return nil, false, false
	}

	if binder, ok := head.Data.(dtos.SessionBinder); ok {
		binder.BindSessions(ids.GameSessionID, ids.PlaySessionID)
	}

	d.queue.PopFront()
	d.inFlight = true
	return head, local, true
}

// deliver sends the entry, runs its success hook, publishes the result and releases the in-flight
// slot. Returns true when the delivery succeeded.
func (d *Dispatcher) deliver(entry *Entry, transport service.Transport) bool {
	body, err := service.Do(context.Background(), transport, entry.request())
	if err == nil && entry.onSuccess != nil {
		if hookErr := entry.onSuccess(body); hookErr != nil {
			err = fmt.Errorf("%s: %w", entry.APIKey, hookErr)
		}
	}
	if err != nil {
		d.logger.Error("Error dispatching", entry.APIKey, err.Error())
	}

	d.mutex.Lock()
	d.inFlight = false
	d.mutex.Unlock()

	entry.result <- Result{Body: body, Err: err}
	return err == nil
}
