package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Concurrent callers for the same key share a single run of fn.
func TestGroup_Do_Coalesces(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	var calls atomic.Int64
	release := make(chan struct{})

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	results := make([]int, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, _, err := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			results[i] = v
		}(i)
	}

	// wait until the leader is in flight before releasing it
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got < 1 || got > n {
		t.Fatalf("fn calls = %d, want in [1..%d]", got, n)
	}
	for i, v := range results {
		if v != 42 {
			t.Fatalf("caller %d got %d, want 42", i, v)
		}
	}
	if g.InFlight() != 0 {
		t.Fatalf("in-flight marker must be removed after completion")
	}
}

// A follower whose context is cancelled returns ctx.Err() while the leader
// keeps running.
func TestGroup_Do_FollowerCancel(t *testing.T) {
	t.Parallel()

	var g Group[int, string]
	release := make(chan struct{})
	leaderDone := make(chan struct{})

	go func() {
		defer close(leaderDone)
		v, _, err := g.Do(context.Background(), 1, func() (string, error) {
			<-release
			return "leader", nil
		})
		if err != nil || v != "leader" {
			t.Errorf("leader got %q, %v", v, err)
		}
	}()
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, shared, err := g.Do(ctx, 1, func() (string, error) {
		t.Error("follower must not run fn")
		return "", nil
	})
	if !errors.Is(err, context.Canceled) || !shared {
		t.Fatalf("follower: shared=%v err=%v, want shared context.Canceled", shared, err)
	}

	close(release)
	<-leaderDone
}

// A panicking leader releases followers with a PanicError and re-panics.
func TestGroup_Do_LeaderPanic(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	entered := make(chan struct{})
	followerErr := make(chan error, 1)

	go func() {
		<-entered
		_, _, err := g.Do(context.Background(), "p", func() (int, error) { return 0, nil })
		followerErr <- err
	}()

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("leader recovered %v, want boom", r)
			}
		}()
		_, _, _ = g.Do(context.Background(), "p", func() (int, error) {
			close(entered)
			for {
				g.mu.Lock()
				dups := g.m["p"].dups
				g.mu.Unlock()
				if dups > 0 {
					break
				}
				time.Sleep(time.Millisecond)
			}
			panic("boom")
		})
	}()

	var pe *PanicError
	if err := <-followerErr; !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("follower err = %v, want PanicError(boom)", err)
	}
}
