// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestVSyncAverageFPS(t *testing.T) {
	v := NewVSync(60)
	now := time.Now()
	for i := 0; i < 10; i++ {
		v.Tick(now.Add(time.Duration(i) * 10 * time.Millisecond))
	}

	got := v.AverageFPS()
	if math.Abs(got-100) > 0.5 {
		t.Errorf("AverageFPS() = %g, want ~100 for 10ms deltas", got)
	}
}

func TestVSyncAverageFPSBeforeFrames(t *testing.T) {
	v := NewVSync(60)
	if got := v.AverageFPS(); got != 0 {
		t.Errorf("AverageFPS() = %g, want 0 with no deltas", got)
	}
	v.Tick(time.Now())
	if got := v.AverageFPS(); got != 0 {
		t.Errorf("AverageFPS() after one tick = %g, want 0", got)
	}
}

func TestVSyncDroppedFrames(t *testing.T) {
	v := NewVSync(60)
	now := time.Now()
	v.Tick(now)
	// 50ms at a 16.67ms target spans three intervals: two dropped.
	v.Tick(now.Add(50 * time.Millisecond))

	if got := v.DroppedFrames(); got != 2 {
		t.Errorf("DroppedFrames() = %d, want 2", got)
	}

	// An on-time frame drops nothing.
	v.Tick(now.Add(50*time.Millisecond + 16*time.Millisecond))
	if got := v.DroppedFrames(); got != 2 {
		t.Errorf("DroppedFrames() after on-time frame = %d, want 2", got)
	}
}

func TestVSyncRollingWindow(t *testing.T) {
	v := NewVSync(60)
	now := time.Now()

	// 70 slow frames, then enough fast frames to fill the window.
	for i := 0; i < 70; i++ {
		now = now.Add(100 * time.Millisecond)
		v.Tick(now)
	}
	for i := 0; i < frameWindow; i++ {
		now = now.Add(10 * time.Millisecond)
		v.Tick(now)
	}

	// Only the fast frames remain in the window.
	got := v.AverageFPS()
	if math.Abs(got-100) > 0.5 {
		t.Errorf("AverageFPS() = %g, want ~100 once old deltas rolled out", got)
	}
}

func TestVSyncFrameCount(t *testing.T) {
	v := NewVSync(60)
	now := time.Now()
	for i := 0; i < 5; i++ {
		v.Tick(now.Add(time.Duration(i) * time.Millisecond))
	}
	if got := v.FrameCount(); got != 5 {
		t.Errorf("FrameCount() = %d, want 5", got)
	}
}

func TestVSyncTargetFrameTime(t *testing.T) {
	v := NewVSync(50)
	if got := v.TargetFrameTime(); got != 20*time.Millisecond {
		t.Errorf("TargetFrameTime() = %v, want 20ms", got)
	}
	v = NewVSync(0)
	if got := v.TargetFrameTime(); got != time.Second/60 {
		t.Errorf("default TargetFrameTime() = %v, want %v", got, time.Second/60)
	}
}

func TestVSyncWaitFrames(t *testing.T) {
	v := NewVSync(60)
	done := make(chan error, 1)
	go func() {
		done <- v.WaitFrames(context.Background(), 2)
	}()

	for i := 0; i < 4; i++ {
		time.Sleep(time.Millisecond)
		v.Tick(time.Now())
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitFrames() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFrames did not return after ticks")
	}
}

func TestVSyncWaitContextCancel(t *testing.T) {
	v := NewVSync(60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestVSyncStopWakesWaiters(t *testing.T) {
	v := NewVSync(60)
	done := make(chan error, 1)
	go func() {
		done <- v.Wait(context.Background())
	}()

	time.Sleep(time.Millisecond)
	v.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrVSyncStopped) {
			t.Errorf("Wait() error = %v, want ErrVSyncStopped", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Stop")
	}

	if err := v.Wait(context.Background()); !errors.Is(err, ErrVSyncStopped) {
		t.Errorf("Wait after Stop error = %v, want ErrVSyncStopped", err)
	}

	frames := v.FrameCount()
	v.Tick(time.Now())
	if got := v.FrameCount(); got != frames {
		t.Errorf("FrameCount() after Stop = %d, want %d", got, frames)
	}
}
