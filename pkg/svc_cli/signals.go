// pkg/svc_cli/signals.go
//
// Signal handling for long running commands such as `service watch`.

package svc_cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// CleanupFunc is a function that performs cleanup operations
type CleanupFunc func() error

// SignalHandler cancels its context on SIGINT or SIGTERM and runs the
// registered cleanups.
type SignalHandler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	cleanupFuncs []CleanupFunc

	sigChan  chan os.Signal
	stopOnce sync.Once
	done     chan struct{}
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(ctx context.Context) *SignalHandler {
	ctx, cancel := context.WithCancel(ctx)

	h := &SignalHandler{
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(h.sigChan, os.Interrupt, syscall.SIGTERM)
	go h.handleSignals()
	return h
}

// RegisterCleanup adds a cleanup function. Cleanups run in reverse order.
func (h *SignalHandler) RegisterCleanup(cleanup CleanupFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFuncs = append(h.cleanupFuncs, cleanup)
}

// Context is cancelled when a signal arrives or Stop is called.
func (h *SignalHandler) Context() context.Context {
	return h.ctx
}

func (h *SignalHandler) handleSignals() {
	select {
	case sig := <-h.sigChan:
		otelzap.Ctx(h.ctx).Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		h.cancel()
		h.runCleanup()
	case <-h.done:
	}
}

func (h *SignalHandler) runCleanup() {
	logger := otelzap.Ctx(h.ctx)

	h.mu.Lock()
	funcs := h.cleanupFuncs
	h.cleanupFuncs = nil
	h.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			logger.Warn("Cleanup function failed", zap.Int("index", i), zap.Error(err))
		}
	}
}

// Stop releases the signal subscription and runs any pending cleanups.
func (h *SignalHandler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
		h.runCleanup()
	})
}
