// Copyright 2026 Silent Risk Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package event provides the in-process event bus carrying ledger events
// (submissions, mints, revocations, verifications) to subscribers such as
// loggers and off-process indexers.
package event

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	EventQueueSize = 20
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

type eventMetrics struct {
	eventsTotal *prometheus.CounterVec
	subscribers *prometheus.GaugeVec
}

type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]chan Event
	metrics     *eventMetrics
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
}

// NewEventBus creates a new EventBus. The prometheus registry may be nil
// to disable metrics.
func NewEventBus(promRegistry prometheus.Registerer) *EventBus {
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]chan Event),
	}
	if promRegistry != nil {
		promautoFactory := promauto.With(promRegistry)
		e.metrics = &eventMetrics{
			eventsTotal: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "veilpass_events_total",
					Help: "total events published by type",
				},
				[]string{"type"},
			),
			subscribers: promautoFactory.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "veilpass_event_subscribers",
					Help: "current subscriber count by event type",
				},
				[]string{"type"},
			),
		}
	}
	return e
}

// Subscribe allows a consumer to receive events of a particular type via a channel
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	evtCh := make(chan Event, EventQueueSize)
	subId := e.lastSubId + 1
	e.lastSubId = subId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]chan Event)
	}
	e.subscribers[eventType][subId] = evtCh
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, evtCh
}

// SubscribeFunc allows a consumer to receive events of a particular type via a callback function
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func(evtCh <-chan Event, handlerFunc EventHandlerFunc) {
		for {
			evt, ok := <-evtCh
			if !ok {
				return
			}
			handlerFunc(evt)
		}
	}(evtCh, handlerFunc)
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an existing subscriber
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if evtTypeSubs, ok := e.subscribers[eventType]; ok {
		if evtCh, ok2 := evtTypeSubs[subId]; ok2 {
			delete(evtTypeSubs, subId)
			if len(evtTypeSubs) == 0 {
				delete(e.subscribers, eventType)
			}
			close(evtCh)
			if e.metrics != nil {
				e.metrics.subscribers.WithLabelValues(string(eventType)).
					Dec()
			}
		}
	}
}

// Publish allows a producer to send an event of a particular type to all subscribers
func (e *EventBus) Publish(eventType EventType, evt Event) {
	// Build list of channels inside read lock to avoid map race condition
	e.mu.RLock()
	subs, ok := e.subscribers[eventType]
	chans := make([]chan Event, 0, len(subs))
	if ok {
		for _, evtCh := range subs {
			chans = append(chans, evtCh)
		}
	}
	e.mu.RUnlock()
	// Send event on gathered channels. Sends block on a full subscriber
	// queue, preserving delivery ordering per subscriber. A concurrent
	// Stop or Unsubscribe closes gathered channels out from under the
	// sends, so each send is recover-guarded; a closed channel has
	// already been removed from the subscriber map.
	for _, evtCh := range chans {
		e.deliver(evtCh, evt)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// deliver sends evt on evtCh, absorbing the panic from a channel closed
// by a concurrent Stop or Unsubscribe.
func (e *EventBus) deliver(evtCh chan Event, evt Event) {
	defer func() {
		_ = recover()
	}()
	evtCh <- evt
}

// Stop closes all subscriber channels and clears the subscribers map.
// This ensures that SubscribeFunc goroutines exit cleanly during shutdown.
// The EventBus can still be reused after Stop() is called.
func (e *EventBus) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, evtTypeSubs := range e.subscribers {
		for _, evtCh := range evtTypeSubs {
			close(evtCh)
		}
	}
	e.subscribers = make(map[EventType]map[EventSubscriberId]chan Event)
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
