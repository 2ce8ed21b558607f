// Package event carries scan progress to HTTP subscribers. Topics live in
// process memory only; a restart drops them and clients re-sync from the
// status endpoint.
package event

import (
	"sync"
	"time"
)

// Kind progress event type
type Kind string

const (
	KindStarted   Kind = "started"
	KindProgress  Kind = "progress"
	KindFileFound Kind = "file_found"
	KindRateLimit Kind = "rate_limited"
	KindCompleted Kind = "completed"
	KindCancelled Kind = "cancelled"
	KindFailed    Kind = "failed"
)

// Event one progress notification. Seq is contiguous from 0 within a topic.
type Event struct {
	ScanID    int64          `json:"scan_id"`
	Seq       int64          `json:"seq"`
	Kind      Kind           `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Terminal reports whether the event closes its topic
func (e *Event) Terminal() bool {
	return e.Kind == KindCompleted || e.Kind == KindCancelled || e.Kind == KindFailed
}

const subscriberBuffer = 64

type topic struct {
	mu      sync.Mutex
	nextSeq int64
	last    *Event
	subs    map[chan Event]struct{}
	closed  bool
}

// Bus an in-process publish/subscribe fan-out keyed by scan id
type Bus struct {
	mu     sync.Mutex
	topics map[int64]*topic
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{topics: make(map[int64]*topic)}
}

func (b *Bus) topicFor(scanID int64) *topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	tp, ok := b.topics[scanID]
	if !ok {
		tp = &topic{subs: make(map[chan Event]struct{})}
		b.topics[scanID] = tp
	}
	return tp
}

// Publish assigns the next sequence number and fans the event out. Slow
// subscribers have stale queued events skipped rather than blocking the
// publisher; the latest event always lands.
func (b *Bus) Publish(scanID int64, kind Kind, payload map[string]any) Event {
	tp := b.topicFor(scanID)

	tp.mu.Lock()
	ev := Event{
		ScanID:    scanID,
		Seq:       tp.nextSeq,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	tp.nextSeq++
	tp.last = &ev

	for ch := range tp.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
	if ev.Terminal() {
		tp.closed = true
		for ch := range tp.subs {
			close(ch)
			delete(tp.subs, ch)
		}
	}
	tp.mu.Unlock()

	return ev
}

// Subscribe attaches to a scan topic. The last published event, if any, is
// replayed first so late subscribers see current state immediately. The
// returned cancel func detaches and closes the channel.
func (b *Bus) Subscribe(scanID int64) (<-chan Event, func()) {
	tp := b.topicFor(scanID)

	ch := make(chan Event, subscriberBuffer)

	tp.mu.Lock()
	if tp.last != nil {
		ch <- *tp.last
	}
	if tp.closed {
		close(ch)
		tp.mu.Unlock()
		return ch, func() {}
	}
	tp.subs[ch] = struct{}{}
	tp.mu.Unlock()

	cancel := func() {
		tp.mu.Lock()
		if _, ok := tp.subs[ch]; ok {
			delete(tp.subs, ch)
			close(ch)
		}
		tp.mu.Unlock()
	}
	return ch, cancel
}

// Drop discards a finished topic
func (b *Bus) Drop(scanID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics, scanID)
}
