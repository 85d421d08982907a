package shutdown

import (
	"context"
	"sync"
)

// Coordinator tracks in-flight dispatches and drives the cooperative
// shutdown sequence: stop admitting, drain what's running, run Handlers,
// then report done (or that the force deadline was hit first).
type Coordinator struct {
	mu       sync.Mutex
	handlers []Handler

	active     int
	drainedCtx context.Context
	drainedFn  context.CancelFunc
}

// NewCoordinator returns a Coordinator ready to track requests.
func NewCoordinator() *Coordinator {
	c := &Coordinator{}
	c.drainedCtx, c.drainedFn = context.WithCancel(context.Background())
	c.drainedFn() // no requests in flight yet
	return c
}

// Register adds h to the set of Handlers run during Shutdown.
func (c *Coordinator) Register(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// BeginRequest marks one dispatch as in flight. The caller must invoke the
// returned func exactly once when the dispatch completes.
func (c *Coordinator) BeginRequest() (end func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == 0 {
		c.drainedCtx, c.drainedFn = context.WithCancel(context.Background())
	}
	c.active++

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.active--
			if c.active == 0 {
				c.drainedFn()
			}
		})
	}
}

// Shutdown runs the graceful shutdown sequence: it waits for outstanding
// requests to drain (or for force to be done, whichever comes first), then
// runs every registered Handler concurrently and waits for them, again
// bounded by force. It returns the first handler error, if any.
func (c *Coordinator) Shutdown(force context.Context) error {
	c.mu.Lock()
	drained := c.drainedCtx
	handlers := append([]Handler(nil), c.handlers...)
	c.mu.Unlock()

	select {
	case <-drained.Done():
	case <-force.Done():
	}

	progress := Progress{
		OutstandingRequests: drained,
		ForceCloseTasks:     force,
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(handlers))
	for _, h := range handlers {
		h := h
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- h.Shutdown(progress)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-force.Done():
	}
	close(errs)

	var first error
	for err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
