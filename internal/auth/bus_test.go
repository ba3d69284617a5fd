package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	bus.Publish(Event{Kind: EventSignedIn, SessionID: "sess-1"})

	assert.Equal(t, Event{Kind: EventSignedIn, SessionID: "sess-1"}, <-a)
	assert.Equal(t, Event{Kind: EventSignedIn, SessionID: "sess-1"}, <-b)
}

func TestBus_CancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()

	cancel()

	_, open := <-ch
	assert.False(t, open)

	// double cancel is a no-op
	cancel()
}

func TestBus_CancelledSubscriberMissesEvents(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(Event{Kind: EventSignedOut})

	_, open := <-ch
	assert.False(t, open)
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// overflow the subscriber buffer; extra events are dropped, not queued
	for i := 0; i < 20; i++ {
		bus.Publish(Event{Kind: EventTokenRefreshed})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, 8, received)
			return
		}
	}
}

func TestTokenPair_Empty(t *testing.T) {
	assert.True(t, TokenPair{}.Empty())
	assert.False(t, TokenPair{Access: "a"}.Empty())
	assert.False(t, TokenPair{Refresh: "r"}.Empty())
}
