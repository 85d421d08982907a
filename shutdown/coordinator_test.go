package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCoordinatorDrainsBeforeHandlers(t *testing.T) {
	c := NewCoordinator()
	end := c.BeginRequest()

	var ranAfterDrain bool
	c.Register(HandlerFunc(func(p Progress) error {
		select {
		case <-p.OutstandingRequests.Done():
			ranAfterDrain = true
		default:
		}
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- c.Shutdown(context.Background()) }()

	select {
	case <-done:
		t.Fatal("shutdown returned before request finished")
	case <-time.After(20 * time.Millisecond):
	}

	end()

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranAfterDrain {
		t.Fatal("handler ran before requests drained")
	}
}

func TestCoordinatorReportsHandlerError(t *testing.T) {
	c := NewCoordinator()
	want := errors.New("close failed")
	c.Register(HandlerFunc(func(Progress) error { return want }))

	if err := c.Shutdown(context.Background()); err != want {
		t.Fatalf("want %v, got %v", want, err)
	}
}

func TestCoordinatorRespectsForceDeadline(t *testing.T) {
	c := NewCoordinator()
	end := c.BeginRequest()
	defer end()

	force, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_ = c.Shutdown(force)
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("shutdown did not respect force deadline")
	}
}
