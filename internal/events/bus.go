/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventPlanGenerated  EventType = "plan.generated"
	EventPlanFailed     EventType = "plan.failed"
	EventPlanDeleted    EventType = "plan.deleted"
	EventSweepCreated   EventType = "sweep.run.created"
	EventSweepItemDone  EventType = "sweep.item.done"
	EventSweepRunDone   EventType = "sweep.run.done"
	EventSweepReportOut EventType = "sweep.report.exported"
)

// AllTypes lists every event the service publishes.
func AllTypes() []EventType {
	return []EventType{
		EventPlanGenerated,
		EventPlanFailed,
		EventPlanDeleted,
		EventSweepCreated,
		EventSweepItemDone,
		EventSweepRunDone,
		EventSweepReportOut,
	}
}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Hook observes every published event. Hooks run synchronously and must not block.
type Hook func(EventType, Payload)

// Bus implements a simple in-process pubsub. Slow subscribers miss events.
type Bus struct {
	mu    sync.RWMutex
	subs  map[EventType][]Subscriber
	hooks []Hook
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 16)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// AddHook registers a function called for every event.
func (b *Bus) AddHook(h Hook) {
	b.mu.Lock()
	b.hooks = append(b.hooks, h)
	b.mu.Unlock()
}

// Publish sends payload to subscribers and hooks.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	hooks := append([]Hook(nil), b.hooks...)
	b.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub <- payload:
		default:
		}
	}
	for _, h := range hooks {
		h(eventType, payload)
	}
}

// Deliver sends payload to local subscribers only. Bridges use it for
// events that arrived from other nodes.
func (b *Bus) Deliver(eventType EventType, payload Payload) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subs[eventType]...)
	b.mu.RUnlock()
	for _, sub := range subs {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
	b.subs[eventType] = subs
}
