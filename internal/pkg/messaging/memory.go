package messaging

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory delivers messages in-process. Queue groups receive each message once,
// round robin; consumers without a group each receive every message.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySub
	closed bool
	next   atomic.Uint64
}

type memorySub struct {
	group string
	ch    chan *memoryMessage
}

// NewMemory creates an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]*memorySub)}
}

// Ping reports ErrClosed after Close.
func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close stops accepting publishes.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Publish enqueues the message for current subscribers; with none it is dropped.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrSubjectRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}

	now := time.Now()
	for _, sub := range m.targets(destination) {
		select {
		case sub.ch <- &memoryMessage{subject: destination, body: msg.Body, headers: msg.Headers, at: now}:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{Subject: destination, Timestamp: now}, nil
}

// targets picks one subscriber per queue group plus every ungrouped one; caller holds m.mu.
func (m *Memory) targets(subject string) []*memorySub {
	var out []*memorySub
	groups := make(map[string][]*memorySub)
	for _, sub := range m.subs[subject] {
		if sub.group == "" {
			out = append(out, sub)
			continue
		}
		groups[sub.group] = append(groups[sub.group], sub)
	}

	n := m.next.Add(1)
	for _, members := range groups {
		out = append(out, members[n%uint64(len(members))])
	}
	return out
}

// Consume registers a subscriber and blocks until ctx is canceled.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrSubjectRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{group: co.queueGroup, ch: make(chan *memoryMessage, co.maxInFlight)}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	// workers outlive ctx until the subscriber is unregistered so a blocked
	// Publish can always complete.
	quit := make(chan struct{})
	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-quit:
					return
				case msg := <-sub.ch:
					handle(ctx, "memory", handler, msg, co.autoAck)
				}
			}
		})
	}

	<-ctx.Done()

	m.mu.Lock()
	subs := m.subs[source]
	for i, s := range subs {
		if s == sub {
			m.subs[source] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	close(quit)
	wg.Wait()
	return ctx.Err()
}

type memoryMessage struct {
	subject string
	body    []byte
	headers []Header
	at      time.Time
	acked   atomic.Bool
	nacked  atomic.Bool
}

func (m *memoryMessage) Body() []byte         { return m.body }
func (m *memoryMessage) Headers() []Header    { return m.headers }
func (m *memoryMessage) Subject() string      { return m.subject }
func (m *memoryMessage) Timestamp() time.Time { return m.at }

func (m *memoryMessage) Header(key string) string {
	for _, h := range m.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (m *memoryMessage) Ack(context.Context) error {
	m.acked.Store(true)
	return nil
}

func (m *memoryMessage) Nack(context.Context) error {
	m.nacked.Store(true)
	return nil
}
