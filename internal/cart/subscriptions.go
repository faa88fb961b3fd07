package cart

import (
	"context"
	"sync"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/types"
)

// broadcaster fan-outs cart snapshot results to subscribers. Channels are
// buffered with capacity one and publishes never block: a subscriber that has
// not drained the previous update only ever sees the latest one.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan types.Result[Snapshot]
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan types.Result[Snapshot])}
}

// Subscribe registers an update channel that is closed and removed when ctx
// is cancelled. The first value is always a Loading marker so consumers can
// render an initial state before the first mutation lands.
func (b *broadcaster) Subscribe(ctx context.Context) <-chan types.Result[Snapshot] {
	ch := make(chan types.Result[Snapshot], 1)
	ch <- types.Loading[Snapshot]()

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers the update to every subscriber, replacing any undrained
// previous value.
func (b *broadcaster) Publish(update types.Result[Snapshot]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- update:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- update:
			default:
			}
		}
	}
}
