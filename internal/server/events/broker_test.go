package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (r *recordingSubscriber) Send(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSubscriber) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSubscriber) received() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recordingSubscriber) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func newRunningBroker(t *testing.T) (*Broker, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)
	return b, cancel
}

func TestBroker_FanOut(t *testing.T) {
	b, _ := newRunningBroker(t)
	sub1, sub2 := &recordingSubscriber{}, &recordingSubscriber{}
	b.Subscribe(sub1)
	b.Subscribe(sub2)
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(HierarchyBuilt, map[string]any{"root": "ROOT"})
	b.Publish(PairingsSaved, map[string]any{"count": 2})

	for _, sub := range []*recordingSubscriber{sub1, sub2} {
		require.Eventually(t, func() bool { return len(sub.received()) == 2 }, time.Second, 5*time.Millisecond)
		got := sub.received()
		assert.Equal(t, HierarchyBuilt, got[0].Type)
		assert.Equal(t, PairingsSaved, got[1].Type)
		assert.False(t, got[0].Timestamp.IsZero())
		assert.Equal(t, []uint64{1, 2}, []uint64{got[0].Seq, got[1].Seq})
	}
}

func TestBroker_SequenceCountsDropped(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	for range cap(b.queue) {
		b.Publish(PairingsReset, PairingsData{})
	}
	dropped := b.Publish(PairingsReset, PairingsData{})
	assert.Equal(t, uint64(cap(b.queue)+1), dropped)
	assert.Equal(t, dropped+1, b.Publish(PairingsReset, PairingsData{}))
}

func TestBroker_Unsubscribe(t *testing.T) {
	b, _ := newRunningBroker(t)
	sub := &recordingSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())
	assert.True(t, sub.isClosed())

	b.Unsubscribe(&recordingSubscriber{})
}

func TestBroker_Shutdown(t *testing.T) {
	b, cancel := newRunningBroker(t)
	sub := &recordingSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, sub.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, b.SubscriberCount())

	late := &recordingSubscriber{}
	b.Subscribe(late)
	assert.True(t, late.isClosed())
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBroker_SubscribeBeforeRun(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	done := make(chan struct{})
	go func() {
		b.Subscribe(&recordingSubscriber{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscribe blocked before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBroker_PublishNeverBlocks(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	done := make(chan struct{})
	go func() {
		for range cap(b.queue) + 10 {
			b.Publish(HierarchyBuilt, nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}
