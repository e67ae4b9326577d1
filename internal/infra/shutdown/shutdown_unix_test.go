//go:build unix

package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestHandler_WaitOnSignal(t *testing.T) {
	h := NewHandler(time.Second, nil)
	h.signals = []os.Signal{syscall.SIGUSR1}

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after signal")
	}
}
