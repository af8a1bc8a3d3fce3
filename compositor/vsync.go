// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// frameWindow is the number of inter-frame deltas kept for the rolling
// FPS average.
const frameWindow = 60

// ErrVSyncStopped is returned by Wait and WaitFrames after Stop.
var ErrVSyncStopped = errors.New("compositor: vsync stopped")

// VSync tracks frame timing against a target refresh rate. The frame
// loop calls Tick once per rendered frame; waiters block until the Nth
// subsequent tick.
type VSync struct {
	mu        sync.Mutex
	targetFPS float64

	lastTick time.Time
	hasTick  bool
	deltas   []float64 // milliseconds, rolling window
	dropped  uint64
	frames   uint64

	frameCh chan struct{}
	done    chan struct{}
	stopped bool
}

// NewVSync creates a tracker for the given target frame rate. A
// non-positive target defaults to 60.
func NewVSync(targetFPS float64) *VSync {
	if targetFPS <= 0 {
		targetFPS = 60
	}
	return &VSync{
		targetFPS: targetFPS,
		deltas:    make([]float64, 0, frameWindow),
		frameCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// TargetFrameTime returns the frame interval implied by the target rate.
func (v *VSync) TargetFrameTime() time.Duration {
	return time.Duration(float64(time.Second) / v.targetFPS)
}

// Tick records one rendered frame and wakes waiters. A delta spanning
// more than one target frame interval counts the skipped intervals as
// dropped frames.
func (v *VSync) Tick(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return
	}
	v.frames++

	if v.hasTick {
		delta := float64(now.Sub(v.lastTick)) / float64(time.Millisecond)
		v.deltas = append(v.deltas, delta)
		if len(v.deltas) > frameWindow {
			v.deltas = v.deltas[1:]
		}

		target := 1000 / v.targetFPS
		if missed := math.Round(delta/target) - 1; missed > 0 {
			v.dropped += uint64(missed)
		}
	}
	v.lastTick = now
	v.hasTick = true

	close(v.frameCh)
	v.frameCh = make(chan struct{})
}

// AverageFPS returns 1000 divided by the mean inter-frame delta over
// the rolling window, or 0 before two frames have been recorded.
func (v *VSync) AverageFPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.deltas) == 0 {
		return 0
	}
	var sum float64
	for _, d := range v.deltas {
		sum += d
	}
	mean := sum / float64(len(v.deltas))
	if mean == 0 {
		return 0
	}
	return 1000 / mean
}

// DroppedFrames returns the cumulative dropped-frame count.
func (v *VSync) DroppedFrames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dropped
}

// FrameCount returns the number of ticks recorded.
func (v *VSync) FrameCount() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

// Wait blocks until the next frame tick.
func (v *VSync) Wait(ctx context.Context) error {
	return v.WaitFrames(ctx, 1)
}

// WaitFrames blocks until n subsequent frame ticks have fired.
func (v *VSync) WaitFrames(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		v.mu.Lock()
		if v.stopped {
			v.mu.Unlock()
			return ErrVSyncStopped
		}
		ch := v.frameCh
		v.mu.Unlock()

		select {
		case <-ch:
		case <-v.done:
			return ErrVSyncStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Stop wakes all waiters with ErrVSyncStopped and ignores further
// ticks.
func (v *VSync) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return
	}
	v.stopped = true
	close(v.done)
}
