package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the ordered, append-only record of turns for one session. Append is
// the only mutator; entries are never reordered or removed. The log lives for
// the life of the process — there is no persistence layer behind it.
//
// Log is safe for concurrent use. The zero value is ready to use.
type Log struct {
	mu    sync.RWMutex
	turns []Turn

	// subscribers receive every appended turn. Guarded by mu.
	subscribers map[int]chan Turn
	nextSubID   int

	// now is overridable in tests.
	now func() time.Time
}

// NewLog returns an initialised Log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append stores a turn and returns it with ID and CreatedAt filled in. The
// timestamp is clamped so that CreatedAt never decreases across the log, even
// if the wall clock steps backwards between appends.
func (l *Log) Append(t Turn) Turn {
	l.mu.Lock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		now := time.Now
		if l.now != nil {
			now = l.now
		}
		t.CreatedAt = now()
	}
	if n := len(l.turns); n > 0 && t.CreatedAt.Before(l.turns[n-1].CreatedAt) {
		t.CreatedAt = l.turns[n-1].CreatedAt
	}

	l.turns = append(l.turns, t)

	// Notify subscribers with non-blocking sends: a slow subscriber misses
	// turns rather than holding up the pipeline. Sending under the lock keeps
	// the sends ordered against Subscribe's channel close.
	for _, ch := range l.subscribers {
		select {
		case ch <- t:
		default:
		}
	}
	l.mu.Unlock()
	return t
}

// Turns returns a snapshot of all turns in insertion order.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of stored turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Subscribe returns a channel that receives every turn appended after the
// call. The channel is buffered; a subscriber that falls behind misses turns
// rather than blocking Append. The subscription ends and the channel is
// closed when ctx is cancelled.
func (l *Log) Subscribe(ctx context.Context) <-chan Turn {
	ch := make(chan Turn, 16)

	l.mu.Lock()
	if l.subscribers == nil {
		l.subscribers = make(map[int]chan Turn)
	}
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = ch
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subscribers, id)
		close(ch)
		l.mu.Unlock()
	}()

	return ch
}
