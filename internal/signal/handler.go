// Package signal provides interrupt handling for bwc commands.
//
// A bwc build can spend an hour inside a delegated gradle process that has
// no timeout of its own; SIGINT/SIGTERM-driven context cancellation is the
// only way to stop it. The handler turns the first signal into a context
// cancel that propagates down to every child process.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels a context when SIGINT or SIGTERM arrives.
type Handler struct {
	ctx         context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	quit        chan struct{} // tells listen() to exit
	once        sync.Once
	stopOnce    sync.Once
	sig         chan os.Signal
}

// NewHandler starts listening for SIGINT and SIGTERM. The first signal
// cancels the derived context and closes the Interrupted channel; callers
// then distinguish "operator stopped it" from other failures.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	ctx = h.Context()
//
//	runs, err := engine.RunAll(ctx, subs)
//	select {
//	case <-h.Interrupted():
//	    // report the interruption rather than the per-run errors
//	default:
//	}
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		quit:        make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while listen()
		// is between receives.
		sig: make(chan os.Signal, 1),
	}

	signal.Notify(h.sig, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the cancellable context. Thread this into every
// operation that should stop on Ctrl+C, including delegated builds.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes once an interrupt signal has
// been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop unregisters the signal listener and cancels the context. Safe to
// call more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sig)
		close(h.quit) // let listen() exit before the handler is dropped
		h.cancel()
	})
}

// handleSignal applies the first signal; later signals are drained but
// have no further effect.
func (h *Handler) handleSignal() {
	h.once.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

// listen loops until Stop() or external cancellation, draining the signal
// channel so delivery never blocks.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.quit:
			return
		case <-h.sig:
			h.handleSignal()
		}
	}
}
