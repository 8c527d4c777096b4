package restmachinery

import (
	"context"
	"sync"
)

type requestIDContextKey struct{}

// pendingRequests tracks the cancel functions of every in-flight request so
// that all of them can be aborted at once when the session is invalidated.
type pendingRequests struct {
	mu      sync.Mutex
	nextID  uint64
	cancels map[uint64]context.CancelFunc
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{
		cancels: map[uint64]context.CancelFunc{},
	}
}

// track derives a cancelable context from ctx and registers it. The returned
// release func must be called once the request, including its response body,
// is finished with.
func (p *pendingRequests) track(
	ctx context.Context,
) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.cancels[id] = cancel
	p.mu.Unlock()
	ctx = context.WithValue(ctx, requestIDContextKey{}, id)
	return ctx, func() {
		p.mu.Lock()
		delete(p.cancels, id)
		p.mu.Unlock()
		cancel()
	}
}

// abortAllExcept cancels every tracked request other than the one identified
// by id and returns how many were canceled. An id of zero spares nothing.
func (p *pendingRequests) abortAllExcept(id uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var aborted int
	for otherID, cancel := range p.cancels {
		if otherID == id {
			continue
		}
		cancel()
		delete(p.cancels, otherID)
		aborted++
	}
	return aborted
}

func (p *pendingRequests) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cancels)
}

func trackedRequestID(ctx context.Context) uint64 {
	id, _ := ctx.Value(requestIDContextKey{}).(uint64)
	return id
}
