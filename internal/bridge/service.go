package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ibs-source/rc-bridge/internal/message"
)

// Loop is a background task run for the lifetime of the bridge, such as the
// journal trimmer. It returns when ctx is canceled.
type Loop struct {
	Name string
	Run  func(ctx context.Context) error
}

// startLoop starts a loop goroutine and reports non-canceled errors
func (b *Bridge) startLoop(ctx context.Context, wg *sync.WaitGroup, loop Loop, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("%s loop error: %w", loop.Name, err)
		}
	}()
}

// Run registers the command handlers, publishes the retained state and
// serves until ctx is canceled or a loop fails. On the way out it stops all
// telemetry sessions and waits for in-flight commands.
func (b *Bridge) Run(ctx context.Context, loops ...Loop) error {
	b.log.Info("Starting bridge %s", b.version)

	if err := b.Register(ctx); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	if err := b.PublishState(ctx); err != nil {
		return err
	}
	b.Notifier.Notify(ctx, message.LevelInfo, fmt.Sprintf("bridge %s started", b.version))

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(loops))
	for _, loop := range loops {
		b.startLoop(loopCtx, &wg, loop, errCh)
	}

	var runErr error
	select {
	case <-ctx.Done():
		b.log.Info("Shutting down bridge")
		runErr = ctx.Err()
	case err := <-errCh:
		b.log.Error("Bridge error: %v", err)
		runErr = err
	}

	cancel()
	wg.Wait()
	b.shutdown(context.WithoutCancel(ctx))
	return runErr
}

// shutdown drains in-flight commands within the configured shutdown timeout,
// then stops every session and refuses new ones.
func (b *Bridge) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.ShutdownTimeout)
	defer cancel()

	b.Notifier.Notify(ctx, message.LevelInfo, "bridge stopping")
	// Drain commands first: a running start handler may still add a session.
	if err := b.Bus.Shutdown(ctx); err != nil {
		b.log.Warn("Commands still running at shutdown: %v", err)
	}
	b.Sessions.Close()
}
