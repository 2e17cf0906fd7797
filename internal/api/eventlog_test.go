package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogAppendAndGet(t *testing.T) {
	log := NewEventLog(time.Minute, nil)

	log.Append("s-1", WebhookEvent{Event: "task.started"})
	log.Append("s-1", WebhookEvent{Event: "task.completed"})
	log.Append("s-2", WebhookEvent{Event: "task.started"})

	events := log.Get("s-1")
	require.Len(t, events, 2)
	assert.Equal(t, "task.started", events[0].Event)
	assert.Equal(t, "task.completed", events[1].Event)

	assert.Len(t, log.Get("s-2"), 1)
	assert.Nil(t, log.Get("unknown"))
}

func TestEventLogGetReturnsCopy(t *testing.T) {
	log := NewEventLog(time.Minute, nil)
	log.Append("s-1", WebhookEvent{Event: "task.started"})

	events := log.Get("s-1")
	events[0].Event = "mutated"

	assert.Equal(t, "task.started", log.Get("s-1")[0].Event)
}

func TestEventLogCapsPerSession(t *testing.T) {
	log := NewEventLog(time.Minute, nil)

	for i := 0; i < maxEventsPerSession+25; i++ {
		log.Append("s-1", WebhookEvent{Event: fmt.Sprintf("event-%d", i)})
	}

	events := log.Get("s-1")
	require.Len(t, events, maxEventsPerSession)
	// Oldest events are dropped first.
	assert.Equal(t, "event-25", events[0].Event)
}

func TestEventLogDelete(t *testing.T) {
	log := NewEventLog(time.Minute, nil)
	log.Append("s-1", WebhookEvent{Event: "task.started"})

	log.Delete("s-1")
	assert.Nil(t, log.Get("s-1"))
}

func TestEventLogSweepEvictsExpiredSessions(t *testing.T) {
	log := NewEventLog(10*time.Millisecond, nil)
	log.Append("stale", WebhookEvent{Event: "task.started"})

	time.Sleep(20 * time.Millisecond)
	log.Append("fresh", WebhookEvent{Event: "task.started"})

	log.sweep()

	assert.Nil(t, log.Get("stale"))
	assert.Len(t, log.Get("fresh"), 1)
}

func TestEventLogAppendRefreshesExpiry(t *testing.T) {
	log := NewEventLog(30*time.Millisecond, nil)
	log.Append("s-1", WebhookEvent{Event: "one"})

	time.Sleep(20 * time.Millisecond)
	log.Append("s-1", WebhookEvent{Event: "two"})
	time.Sleep(20 * time.Millisecond)

	// 40ms after the first event but only 20ms after the last: still alive.
	log.sweep()
	assert.Len(t, log.Get("s-1"), 2)
}
