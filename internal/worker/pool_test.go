package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_CoversEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 4, 16} {
		pool := New(workers)
		n := 100
		out := make([]int32, n)
		err := pool.Run(context.Background(), n, func(i int) {
			atomic.AddInt32(&out[i], 1)
		})
		if err != nil {
			t.Fatalf("workers=%d: Run: %v", workers, err)
		}
		for i, count := range out {
			if count != 1 {
				t.Fatalf("workers=%d: index %d ran %d times", workers, i, count)
			}
		}
	}
}

func TestPool_ResultsIndexOrdered(t *testing.T) {
	// Writing by index must give identical output regardless of how
	// many workers race over the input.
	n := 50
	sequential := make([]int, n)
	if err := New(1).Run(context.Background(), n, func(i int) { sequential[i] = i * i }); err != nil {
		t.Fatal(err)
	}

	parallel := make([]int, n)
	if err := New(8).Run(context.Background(), n, func(i int) { parallel[i] = i * i }); err != nil {
		t.Fatal(err)
	}

	for i := range sequential {
		if sequential[i] != parallel[i] {
			t.Fatalf("index %d: sequential %d, parallel %d", i, sequential[i], parallel[i])
		}
	}
}

func TestPool_ZeroWorkersIsSequential(t *testing.T) {
	if got := New(0).Workers(); got != 1 {
		t.Errorf("Workers = %d, want 1", got)
	}
	if got := New(-3).Workers(); got != 1 {
		t.Errorf("Workers = %d, want 1", got)
	}
}

func TestPool_EmptyInput(t *testing.T) {
	called := false
	if err := New(4).Run(context.Background(), 0, func(int) { called = true }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Error("fn called for empty input")
	}
}

func TestPool_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ran atomic.Int32
	err := New(2).Run(ctx, 10000, func(i int) {
		if ran.Add(1) == 5 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if n := ran.Load(); n >= 10000 {
		t.Errorf("ran %d of 10000 after cancel", n)
	}
}

func TestPool_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(1).Run(ctx, 5, func(int) {
		t.Error("fn called after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
