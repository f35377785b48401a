//go:build !windows

package main

import (
	"context"
	"syscall"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNotifyReload - SIGHUP triggers a reload
// ---------------------------------------------------------------------------

func TestNotifyReload(t *testing.T) {
	// NO t.Parallel() - sends a signal to the test process

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	notifyReload(ctx, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("sending SIGHUP: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload was not called after SIGHUP")
	}
}
