package tintbar

import (
	"context"
)

// Shutdown coordinates an orderly, cancellable process exit: every live UI
// thread's window is asked whether it can close, and only if every window
// agrees does the dispatcher bridge drain and the quit sentinel carrying
// exitCode reach the main message queue.
//
// A refusal aborts only this attempt: the refusing window is brought to the
// foreground, the process keeps running, and a later explicit Shutdown call
// retries. Overlapping calls while an attempt is in flight are a no-op.
func (app *Application) Shutdown(exitCode int) {
	if !app.shutdownInFlight.CompareAndSwap(false, true) {
		app.logger.Debug("Shutdown already in progress")
		return
	}

	app.emitEvent(context.Background(), EventTypeShutdownRequested, map[string]any{"exitCode": exitCode})
	go app.pollAndQuit(exitCode)
}

func (app *Application) pollAndQuit(exitCode int) {
	canExit := true

	// Snapshot of live threads at call time; threads appearing later are
	// this attempt's blind spot, the next attempt's problem.
	for thread := range app.hosts.Threads() {
		window := thread.CurrentWindow()
		if window == nil || window.Page() == nil {
			continue
		}

		// Asking whether the window can close requires being on its
		// thread, so switch context onto it.
		reply := make(chan bool, 1)
		err := thread.Dispatch(func() {
			reply <- window.TryClose()
		})
		if err != nil {
			// The thread finished between snapshot and dispatch; its
			// window is gone.
			continue
		}

		if !<-reply {
			canExit = false

			// Bring attention to the window that refused, but keep
			// polling the remaining threads.
			window.BringToForeground()
			app.logger.Info("Window refused to close", "kind", string(window.Kind()), "handle", uint64(window.Handle()))
		}
	}

	if !canExit {
		app.emitEvent(context.Background(), EventTypeShutdownBlocked, map[string]any{"exitCode": exitCode})
		app.shutdownInFlight.Store(false)
		return
	}

	// Go back to the main thread for exiting: drain and disable the
	// dispatcher queue, then post the terminal quit signal.
	err := app.bridge.DispatchToMain(func() {
		drained := app.mainQueue.ShutdownAsync()
		go func() {
			<-drained
			app.emitEvent(context.Background(), EventTypeShutdownCompleted, map[string]any{"exitCode": exitCode})
			app.msgs.PostQuit(exitCode)
		}()
	})
	if err != nil {
		// Main queue already gone; nothing left to drain.
		app.msgs.PostQuit(exitCode)
	}
}
