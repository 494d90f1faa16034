package cli

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalContext(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("stop did not cancel the context")
	}
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("parent cancellation did not propagate")
	}
}

func TestReloadSignals(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping signal test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	reloads := ReloadSignals(ctx)

	p, _ := os.FindProcess(os.Getpid())
	if err := p.Signal(syscall.SIGHUP); err != nil {
		t.Skipf("cannot signal own process: %v", err)
	}

	select {
	case <-reloads:
	case <-time.After(2 * time.Second):
		t.Error("SIGHUP was not delivered")
	}

	cancel()
	select {
	case _, ok := <-reloads:
		if ok {
			// A buffered reload may still be pending; the close follows.
			<-reloads
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after context cancelled")
	}
}
