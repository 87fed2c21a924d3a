package eventbus

import (
	"context"
	"sync"
)

// Topic creates a group of subscribers that only receive events published to that topic
type Topic string

const (
	defaultTopic Topic = "__default__"

	// buffer is the number of undelivered events a subscriber can fall behind before Dispatch blocks
	buffer = 16
)

// ShutdownFunc is called by a subscriber once it has finished handling events after its channel is closed
type ShutdownFunc func()

// EventBus dispatches events to all subscribers on one or more topics.  Subscribers that name no topic are on the
// default topic and receive every event.  Subscribers can use the EventType to filter which events they respond to
// rather than configuring multiple topics.
type EventBus struct {
	mutex       sync.RWMutex
	subscribers map[Topic][]chan Event
	done        []chan struct{}
	closed      bool
}

// New returns a new event bus
func New() *EventBus {
	return &EventBus{
		subscribers: make(map[Topic][]chan Event),
	}
}

// Subscribe registers a subscriber to 0 or more topics.  If no topic is given, the subscriber is added to the default
// topic and receives all events published on any topic.
//
// The event channel is closed when the bus shuts down.  Subscribers should treat a closed channel as the shutdown
// signal, finish outstanding work and then call the returned ShutdownFunc.
func (e *EventBus) Subscribe(topics ...Topic) (<-chan Event, ShutdownFunc) {
	c, done := e.subscribe(topics...)
	var once sync.Once
	return c, func() { once.Do(func() { close(done) }) }
}

func (e *EventBus) subscribe(topics ...Topic) (chan Event, chan struct{}) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	c := make(chan Event, buffer)
	done := make(chan struct{})
	if e.closed {
		close(c)
		close(done)
		return c, done
	}
	e.done = append(e.done, done)

	if len(topics) == 0 {
		topics = []Topic{defaultTopic}
	}
	for _, topic := range topics {
		e.subscribers[topic] = append(e.subscribers[topic], c)
	}
	return c, done
}

// Dispatch sends the event to subscribers of the given topics and to every default topic subscriber.  Each
// subscriber receives the event once even if it subscribed to several of the topics.  Events are delivered in
// dispatch order.  Dispatch blocks while a subscriber's buffer is full.
func (e *EventBus) Dispatch(event Event, topics ...Topic) error {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	if e.closed {
		return ErrClosed
	}

	topics = append(topics, defaultTopic)
	sent := make(map[chan Event]bool)
	for _, topic := range topics {
		// no subscribers on the topic is fine, the event is dropped
		for _, ch := range e.subscribers[topic] {
			if sent[ch] {
				continue
			}
			sent[ch] = true
			ch <- event
		}
	}
	return nil
}

// Shutdown closes every subscriber channel and blocks until all subscribers have called their ShutdownFunc.  It
// returns ErrShutdownTimeout if the context is done first.
func (e *EventBus) Shutdown(ctx context.Context) error {
	e.mutex.Lock()
	if e.closed {
		e.mutex.Unlock()
		return nil
	}
	e.closed = true

	closed := make(map[chan Event]bool)
	for _, chs := range e.subscribers {
		for _, ch := range chs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	done := make(chan struct{})
	go shutdownNotify(done, append([]chan struct{}{}, e.done...))
	e.mutex.Unlock()

	select {
	case <-ctx.Done():
		return ErrShutdownTimeout
	case <-done:
		return nil
	}
}

// shutdownNotify waits for every subscriber done channel to be closed and then closes done
func shutdownNotify(done chan struct{}, all []chan struct{}) {
	var wg sync.WaitGroup
	for _, ch := range all {
		wg.Add(1)
		go func(c chan struct{}) {
			defer wg.Done()
			<-c
		}(ch)
	}
	wg.Wait()
	close(done)
}
