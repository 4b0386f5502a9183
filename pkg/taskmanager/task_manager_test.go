package taskmanager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStopDrainsQueuedTasks(t *testing.T) {
	tm := NewTaskManager(2, 10)
	tm.Start()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		if err := tm.AddTask(func() {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
		}); err != nil {
			t.Fatalf("AddTask returned error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tm.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if got := ran.Load(); got != 10 {
		t.Fatalf("expected all 10 queued tasks to run, got %d", got)
	}
}

func TestAddTaskAfterStop(t *testing.T) {
	tm := NewTaskManager(1, 1)
	tm.Start()
	if err := tm.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if err := tm.AddTask(func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	// A second Stop is harmless.
	if err := tm.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop returned error: %v", err)
	}
}

func TestAddTaskReportsFullQueue(t *testing.T) {
	tm := NewTaskManager(1, 1)
	tm.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := tm.AddTask(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}
	<-started

	if err := tm.AddTask(func() {}); err != nil {
		t.Fatalf("expected buffered slot to be free, got %v", err)
	}
	if err := tm.AddTask(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	if err := tm.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	tm := NewTaskManager(1, 2)
	tm.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = tm.AddTask(func() { panic("boom") })
	_ = tm.AddTask(func() { wg.Done() })

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("task after panic never ran")
	}
	_ = tm.Stop(context.Background())
}

func TestStopHonoursContext(t *testing.T) {
	tm := NewTaskManager(1, 1)
	tm.Start()

	release := make(chan struct{})
	_ = tm.AddTask(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tm.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)
}
