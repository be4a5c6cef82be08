// Package worker implements the background rebuild workflow: re-mining the
// whole chain when the difficulty changes, with support for cancelling a
// rebuild that is still in flight.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/powlab/powchain/foundation/blockchain/state"
)

// Worker manages the rebuild workflow for the simulator.
type Worker struct {
	state         *state.State
	wg            sync.WaitGroup
	shut          chan struct{}
	startRebuild  chan uint
	cancelRebuild chan chan struct{}
	evHandler     state.EventHandler
}

// Run creates a worker, registers it with the provided state and starts
// the rebuild goroutine.
func Run(st *state.State, evHandler state.EventHandler) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	w := Worker{
		state:         st,
		shut:          make(chan struct{}),
		startRebuild:  make(chan uint, 1),
		cancelRebuild: make(chan chan struct{}, 1),
		evHandler:     ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.rebuildOperations()
	}()
}

// Shutdown is a blocking call to terminate the rebuild goroutine.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel rebuild")
	done := w.signalCancelRebuild()
	done()

	w.evHandler("worker: shutdown: terminate goroutine")
	close(w.shut)
	w.wg.Wait()
}

// =============================================================================

// SignalRebuild schedules a whole-chain rebuild under the specified
// difficulty. A rebuild already in flight is cancelled first; only the
// latest requested difficulty is honored.
func (w *Worker) SignalRebuild(difficulty uint) {
	done := w.signalCancelRebuild()
	done()

	// Replace any rebuild request that has not started yet.
	select {
	case <-w.startRebuild:
	default:
	}
	select {
	case w.startRebuild <- difficulty:
	default:
	}

	w.evHandler("worker: SignalRebuild: rebuild signaled: difficulty[%d]", difficulty)
}

// signalCancelRebuild signals the G executing the runRebuildOperation
// function to stop immediately. That G will not return from the function
// until done is called. This allows the caller to complete any state
// changes before a new rebuild operation takes place.
func (w *Worker) signalCancelRebuild() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelRebuild <- wait:
	default:
	}
	w.evHandler("worker: signalCancelRebuild: cancel rebuild signaled")

	return func() { close(wait) }
}

// =============================================================================

// rebuildOperations handles re-mining the chain on difficulty changes.
func (w *Worker) rebuildOperations() {
	w.evHandler("worker: rebuildOperations: G started")
	defer w.evHandler("worker: rebuildOperations: G completed")

	for {
		select {
		case difficulty := <-w.startRebuild:
			if !w.isShutdown() {
				w.runRebuildOperation(difficulty)
			}
		case <-w.shut:
			w.evHandler("worker: rebuildOperations: received shut signal")
			return
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// runRebuildOperation re-mines the whole chain under a new difficulty.
func (w *Worker) runRebuildOperation(difficulty uint) {
	w.evHandler("worker: runRebuildOperation: REBUILD: started: difficulty[%d]", difficulty)
	defer w.evHandler("worker: runRebuildOperation: REBUILD: completed")

	// If the rebuild is cancelled by SignalRebuild, this G can't terminate
	// until it is told it can.
	var wait chan struct{}
	defer func() {
		if wait != nil {
			w.evHandler("worker: runRebuildOperation: REBUILD: termination signal: waiting")
			<-wait
			w.evHandler("worker: runRebuildOperation: REBUILD: termination signal: received")
		}
	}()

	// Drain the cancel rebuild channel before starting.
	select {
	case <-w.cancelRebuild:
		w.evHandler("worker: runRebuildOperation: REBUILD: drained cancel channel")
	default:
	}

	// Create a context so the rebuild can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the rebuild operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case wait = <-w.cancelRebuild:
			w.evHandler("worker: runRebuildOperation: REBUILD: cancel rebuild requested")
		case <-ctx.Done():
		}
	}()

	// This G is performing the rebuild.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		if err := w.state.Rebuild(ctx, difficulty); err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				w.evHandler("worker: runRebuildOperation: REBUILD: CANCELLED: by request")
			default:
				w.evHandler("worker: runRebuildOperation: REBUILD: ERROR: %s", err)
			}
		}
	}()

	// Wait for both G's to terminate.
	wg.Wait()
}
