// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	clock := Fake(epoch)
	later := epoch.Add(time.Hour)
	clock.Set(later)
	if got := clock.Now(); !got.Equal(later) {
		t.Fatalf("Now() after Set = %v, want %v", got, later)
	}
}

func TestFakeClockConcurrentAdvance(t *testing.T) {
	clock := Fake(epoch)

	var wait sync.WaitGroup
	for range 8 {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for range 100 {
				clock.Advance(time.Millisecond)
				_ = clock.Now()
			}
		}()
	}
	wait.Wait()

	if got, want := clock.Now().Sub(epoch), 800*time.Millisecond; got != want {
		t.Errorf("elapsed = %v, want %v", got, want)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	clock := Real()
	first := clock.Now()
	second := clock.Now()
	if second.Before(first) {
		t.Errorf("Real clock went backward: %v then %v", first, second)
	}
}
