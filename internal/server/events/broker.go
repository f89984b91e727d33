package events

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/leimap/pkg/constants"
)

// Broker queues published events and delivers them, in order, to every
// subscriber from a single goroutine.
type Broker struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	closed      bool

	queue  chan Event
	seq    atomic.Uint64
	logger *zerolog.Logger
}

// NewBroker creates a broker. Subscribers may be added before Run.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		queue:  make(chan Event, constants.ChannelBufferSize),
		logger: logger,
	}
}

// Run delivers queued events until ctx is canceled, then closes every
// subscriber. Events still queued at that point are discarded.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case event := <-b.queue:
			b.deliver(event)
		}
	}
}

func (b *Broker) deliver(event Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Send(event); err != nil {
			b.logger.Warn().
				Err(err).
				Str("event_type", string(event.Type)).
				Uint64("seq", event.Seq).
				Msg("Failed to deliver event")
		}
	}
	b.logger.Debug().
		Str("event_type", string(event.Type)).
		Uint64("seq", event.Seq).
		Int("subscribers", len(subs)).
		Msg("Event delivered")
}

func (b *Broker) shutdown() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = nil
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	b.logger.Info().Uint64("published", b.seq.Load()).Msg("Event broker shut down")
}

// Publish queues an event and returns its sequence number. It never blocks:
// when the queue is full the event is dropped, though its number stays used.
func (b *Broker) Publish(eventType EventType, data any) uint64 {
	event := Event{
		Seq:       b.seq.Add(1),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	select {
	case b.queue <- event:
	default:
		b.logger.Warn().
			Str("event_type", string(eventType)).
			Uint64("seq", event.Seq).
			Msg("Event queue full, event dropped")
	}
	return event.Seq
}

// Subscribe adds sub. After shutdown sub is closed immediately.
func (b *Broker) Subscribe(sub Subscriber) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = sub.Close()
		return
	}
	b.subscribers = append(b.subscribers, sub)
	n := len(b.subscribers)
	b.mu.Unlock()
	b.logger.Debug().Int("total_subscribers", n).Msg("Subscriber added")
}

// Unsubscribe removes and closes sub. Unknown subscribers are ignored.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	i := slices.Index(b.subscribers, sub)
	if i >= 0 {
		b.subscribers = slices.Delete(b.subscribers, i, i+1)
	}
	b.mu.Unlock()

	if i >= 0 {
		_ = sub.Close()
	}
}

// LastSeq returns the sequence number of the most recent Publish.
func (b *Broker) LastSeq() uint64 {
	return b.seq.Load()
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
