// SPDX-FileCopyrightText: 2017 Kubernetes.
// SPDX-License-Identifier: Apache-2.0

package signalx

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// ExitCode is the status the process exits with on a second signal.
const ExitCode = 130

// Context returns a copy of parent that is canceled on SIGTERM or SIGINT,
// if a second signal is caught, the program is terminated with ExitCode.
// The returned stop function unregisters the handler.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)

	done := make(chan struct{})

	go func() {
		select {
		case <-c:
			cancel()
		case <-done:
			return
		}

		select {
		case <-c:
			os.Exit(ExitCode) // Second signal. Exit directly.
		case <-done:
		}
	}()

	var once sync.Once

	stop := func() {
		once.Do(func() {
			signal.Stop(c)
			close(done)
			cancel()
		})
	}

	return ctx, stop
}
