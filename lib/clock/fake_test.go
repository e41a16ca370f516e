// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFakeNow(t *testing.T) {
	fake := Fake(testEpoch)
	if got := fake.Now(); !got.Equal(testEpoch) {
		t.Errorf("Now() = %v, want %v", got, testEpoch)
	}

	fake.Advance(90 * time.Second)
	if got := fake.Now(); !got.Equal(testEpoch.Add(90 * time.Second)) {
		t.Errorf("Now() after Advance = %v, want %v", got, testEpoch.Add(90*time.Second))
	}
}

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	fake := Fake(testEpoch)

	fired := 0
	fake.AfterFunc(time.Hour, func() { fired++ })

	fake.Advance(59 * time.Minute)
	if fired != 0 {
		t.Fatalf("timer fired %d times before deadline", fired)
	}

	fake.Advance(time.Minute)
	if fired != 1 {
		t.Fatalf("timer fired %d times, want 1", fired)
	}

	// A fired one-shot timer must not fire again.
	fake.Advance(2 * time.Hour)
	if fired != 1 {
		t.Fatalf("timer fired %d times after extra advance, want 1", fired)
	}
}

func TestFakeAfterFuncImmediate(t *testing.T) {
	fake := Fake(testEpoch)

	fired := false
	fake.AfterFunc(0, func() { fired = true })
	if !fired {
		t.Fatal("AfterFunc(0) should fire synchronously")
	}
}

func TestFakeTimerStop(t *testing.T) {
	fake := Fake(testEpoch)

	fired := false
	timer := fake.AfterFunc(time.Minute, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop() on pending timer should return true")
	}
	if timer.Stop() {
		t.Fatal("second Stop() should return false")
	}

	fake.Advance(time.Hour)
	if fired {
		t.Fatal("stopped timer fired")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", fake.PendingCount())
	}
}

func TestFakeTimerReset(t *testing.T) {
	fake := Fake(testEpoch)

	fired := 0
	timer := fake.AfterFunc(time.Minute, func() { fired++ })

	if !timer.Reset(time.Hour) {
		t.Fatal("Reset() on pending timer should return true")
	}

	fake.Advance(time.Minute)
	if fired != 0 {
		t.Fatal("timer fired at its original deadline after Reset")
	}

	fake.Advance(time.Hour)
	if fired != 1 {
		t.Fatalf("timer fired %d times, want 1", fired)
	}
}

func TestFakeAfterChannel(t *testing.T) {
	fake := Fake(testEpoch)

	ch := fake.After(10 * time.Second)
	select {
	case <-ch:
		t.Fatal("channel received before Advance")
	default:
	}

	fake.Advance(10 * time.Second)
	select {
	case got := <-ch:
		if !got.Equal(testEpoch.Add(10 * time.Second)) {
			t.Errorf("received %v, want %v", got, testEpoch.Add(10*time.Second))
		}
	default:
		t.Fatal("channel did not receive after Advance")
	}
}

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	fake := Fake(testEpoch)

	var order []string
	fake.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	fake.AfterFunc(time.Second, func() { order = append(order, "a") })
	fake.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	fake.Advance(5 * time.Second)

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("fired %d timers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("fire order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
