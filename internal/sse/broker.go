// Package sse streams storage change events to browsers over Server-Sent
// Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/caseificio/internal/models"
)

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ChangePayload is the data of a record change event. New is nil on delete.
type ChangePayload struct {
	EventType models.EventType `json:"eventType"`
	Table     string           `json:"table"`
	ID        string           `json:"id"`
	New       any              `json:"new"`
}

// AgendaUpdated is the throttled event telling clients to refresh agendas.
const AgendaUpdated = "agenda.updated"

// ChangeEventName returns the SSE event name of ev, e.g. "activities.insert".
func ChangeEventName(ev models.ChangeEvent) string {
	return ev.Table + "." + strings.ToLower(string(ev.Type))
}

// Broker fans events out to connected clients.
//
// A single goroutine owns the client set and the agenda throttle timestamp.
// Public methods talk to it over channels.
type Broker struct {
	agendaMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan models.ChangeEvent
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits agenda.updated at most once per
// agendaThrottle.
func NewBroker(agendaThrottle time.Duration) *Broker {
	if agendaThrottle <= 0 {
		agendaThrottle = 2 * time.Second
	}

	b := &Broker{
		agendaMin:     agendaThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan models.ChangeEvent, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastAgenda time.Time
		trailing   *time.Timer
		trailingC  <-chan time.Time
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	agendaUpdated := func(now time.Time) {
		lastAgenda = now
		broadcast(Event{Type: AgendaUpdated, Data: map[string]string{}})
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.changeCh:
			broadcast(Event{Type: ChangeEventName(ev), Data: ChangePayload{
				EventType: ev.Type,
				Table:     ev.Table,
				ID:        ev.ID,
				New:       ev.Record(),
			}})

			// Leading edge fires at once; changes inside the window are
			// folded into one trailing notification.
			now := time.Now()
			switch wait := b.agendaMin - now.Sub(lastAgenda); {
			case wait <= 0:
				agendaUpdated(now)
			case trailingC == nil:
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
			}

		case now := <-trailingC:
			trailingC = nil
			agendaUpdated(now)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishChange broadcasts a record change followed, at most once per
// throttle interval, by agenda.updated.
func (b *Broker) PublishChange(ev models.ChangeEvent) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- ev:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint (GET /api/events).
//
//	@Summary		Stream record changes and agenda.updated notifications
//	@Tags			events
//	@Produce		text/event-stream
//	@Success		200
//	@Security		BearerAuth
//	@Router			/events [get]
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
