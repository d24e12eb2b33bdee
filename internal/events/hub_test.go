package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope() Envelope {
	return Envelope{
		Metadata: fixedMetadata(nil),
		Event:    TodoDeleted{TodoID: uuid.New(), DeletedAt: testTime},
	}
}

func TestHubFanout(t *testing.T) {
	hub := NewHub(DefaultBroadcastBuffer)

	first := hub.Subscribe()
	defer first.Close()
	second := hub.Subscribe()
	defer second.Close()

	env := testEnvelope()
	hub.Broadcast(env)

	assert.Equal(t, env, <-first.C)
	assert.Equal(t, env, <-second.C)
}

func TestHubSubscribeAfterBroadcastSeesNothing(t *testing.T) {
	hub := NewHub(DefaultBroadcastBuffer)

	hub.Broadcast(testEnvelope())

	sub := hub.Subscribe()
	defer sub.Close()

	select {
	case env := <-sub.C:
		t.Fatalf("late subscriber received replayed envelope: %#v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewHub(1)

	slow := hub.Subscribe()
	defer slow.Close()
	fast := hub.Subscribe()
	defer fast.Close()

	first := testEnvelope()
	second := testEnvelope()

	// Nobody drains, so the second broadcast overflows the slow buffer.
	hub.Broadcast(first)
	hub.Broadcast(second)

	assert.Equal(t, first, <-slow.C)
	select {
	case env := <-slow.C:
		t.Fatalf("expected overflow drop, got %#v", env)
	case <-time.After(50 * time.Millisecond):
	}

	// The other subscriber had its own buffer and is unaffected by the drop.
	assert.Equal(t, first, <-fast.C)
}

func TestHubCloseDetachesSubscriber(t *testing.T) {
	hub := NewHub(DefaultBroadcastBuffer)

	sub := hub.Subscribe()
	other := hub.Subscribe()
	defer other.Close()

	sub.Close()
	hub.Broadcast(testEnvelope())

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok, "closed subscription channel must be closed, not delivering")
	case <-time.After(50 * time.Millisecond):
		t.Fatal("closed subscription channel should read immediately")
	}

	require.Len(t, other.C, 1, "remaining subscriber still receives")
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub(DefaultBroadcastBuffer)

	sub := hub.Subscribe()
	sub.Close()
	assert.NotPanics(t, sub.Close)
}

func TestHubBroadcastWithNoSubscribers(t *testing.T) {
	hub := NewHub(DefaultBroadcastBuffer)
	assert.NotPanics(t, func() { hub.Broadcast(testEnvelope()) })
}

func TestHubConcurrentSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(DefaultBroadcastBuffer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.Broadcast(testEnvelope())
		}
	}()

	for i := 0; i < 20; i++ {
		sub := hub.Subscribe()
		sub.Close()
	}

	<-done
}
