// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/gpu"
	"github.com/gogpu/paint/layer"
)

// Thread errors.
var (
	// ErrNoDevice is returned by Initialize when no GPU device is
	// available.
	ErrNoDevice = errors.New("compositor: no GPU device available")

	// ErrNotInitialized is returned when rendering before Initialize.
	ErrNotInitialized = errors.New("compositor: thread not initialized")

	// ErrAlreadyRunning is returned by Start when the frame loop is
	// active.
	ErrAlreadyRunning = errors.New("compositor: frame loop already running")
)

// FrameStats is a snapshot of frame-loop telemetry.
type FrameStats struct {
	Frames        uint64        `json:"frames"`
	AverageFPS    float64       `json:"averageFps"`
	DroppedFrames uint64        `json:"droppedFrames"`
	TextureMemory uint64        `json:"textureMemory"`
	LastFrameTime time.Duration `json:"lastFrameTime"`
}

// Config configures a compositor thread.
type Config struct {
	// Device names the gpu device to use. Empty selects the best
	// registered device.
	Device string
	// TargetFPS is the frame-loop rate. Non-positive defaults to 60.
	TargetFPS float64
	// TextureBudget caps layer texture memory in bytes (0 = unlimited).
	TextureBudget uint64
}

// Thread owns the GPU device and the shared quad program and drives the
// upload-then-composite cycle once per frame interval.
//
// All rendering happens on the loop goroutine (or the caller of
// RenderFrame); Stats, Resize, and Stop are safe to call from others.
type Thread struct {
	mu sync.Mutex

	device  gpu.Device
	factory paint.SurfaceFactory
	manager *Manager
	vsync   *VSync
	program gpu.ProgramID

	// budget and deviceExplicit come from Config: an explicitly named
	// device that fails to initialize is fatal, an auto-selected one
	// falls back to software.
	budget         uint64
	deviceExplicit bool

	width, height int

	initialized bool
	running     bool
	cancel      context.CancelFunc
	loopDone    chan struct{}

	lastFrameTime time.Duration
}

// NewThread creates a compositor thread rasterizing through factory.
func NewThread(factory paint.SurfaceFactory, cfg Config) *Thread {
	var device gpu.Device
	if cfg.Device != "" {
		device = gpu.Get(cfg.Device)
	} else {
		device = gpu.Default()
	}

	t := &Thread{
		device:         device,
		factory:        factory,
		vsync:          NewVSync(cfg.TargetFPS),
		budget:         cfg.TextureBudget,
		deviceExplicit: cfg.Device != "",
	}
	if device != nil {
		t.manager = NewManager(device, factory, cfg.TextureBudget)
	}
	return t
}

// Initialize brings up the device and compiles the shared quad program.
// Failures here are fatal: the thread must not be used to render
// without a working device and program.
func (t *Thread) Initialize(width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}
	if t.device == nil {
		return ErrNoDevice
	}
	if err := t.device.Init(); err != nil {
		if t.deviceExplicit || t.device.Name() == gpu.DeviceSoftware {
			return fmt.Errorf("compositor: device init: %w", err)
		}
		fallback := gpu.Get(gpu.DeviceSoftware)
		if fallback == nil {
			return fmt.Errorf("compositor: device init: %w", err)
		}
		paint.Logger().Warn("compositor: falling back to software device",
			slog.String("device", t.device.Name()),
			slog.String("error", err.Error()))
		if initErr := fallback.Init(); initErr != nil {
			return fmt.Errorf("compositor: software fallback init: %w", initErr)
		}
		t.device.Close()
		t.device = fallback
		t.manager = NewManager(fallback, t.factory, t.budget)
	}

	program, err := t.device.CompileProgram(QuadVertexShader, QuadFragmentShader)
	if err != nil {
		return fmt.Errorf("compositor: quad program: %w", err)
	}
	t.program = program
	t.width = width
	t.height = height
	t.initialized = true

	paint.Logger().Info("compositor: initialized",
		slog.String("device", t.device.Name()),
		slog.Int("width", width),
		slog.Int("height", height))
	return nil
}

// Manager returns the layer manager, or nil before construction found a
// device.
func (t *Thread) Manager() *Manager { return t.manager }

// VSync returns the frame-timing tracker.
func (t *Thread) VSync() *VSync { return t.vsync }

// Device returns the GPU device.
func (t *Thread) Device() gpu.Device { return t.device }

// RenderFrame runs one upload-then-composite cycle against the paint
// tree: sync mirrors, join all pending uploads, clear the framebuffer,
// and draw every layer in paint order.
func (t *Thread) RenderFrame(ctx context.Context, tree *layer.Tree) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderFrameLocked(ctx, tree)
}

func (t *Thread) renderFrameLocked(ctx context.Context, tree *layer.Tree) error {
	if !t.initialized {
		return ErrNotInitialized
	}
	start := time.Now()
	viewport := paint.Rect{Width: float64(t.width), Height: float64(t.height)}

	t.manager.Update(tree)
	if err := t.manager.UploadPending(ctx, viewport); err != nil {
		return err
	}
	if err := t.device.BeginFrame(t.width, t.height); err != nil {
		return err
	}
	t.manager.Composite(t.program, viewport)
	t.manager.EvictToBudget(viewport)

	t.lastFrameTime = time.Since(start)
	t.vsync.Tick(time.Now())
	return nil
}

// Start launches the frame loop at the target frame interval. The loop
// renders from tree until Stop or context cancellation.
func (t *Thread) Start(ctx context.Context, tree *layer.Tree) error {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return ErrNotInitialized
	}
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.loopDone = make(chan struct{})
	t.running = true
	t.mu.Unlock()

	go t.loop(ctx, tree)
	return nil
}

func (t *Thread) loop(ctx context.Context, tree *layer.Tree) {
	defer close(t.loopDone)

	ticker := time.NewTicker(t.vsync.TargetFrameTime())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.RenderFrame(ctx, tree); err != nil {
				if ctx.Err() != nil {
					return
				}
				paint.Logger().Warn("compositor: frame failed",
					slog.String("error", err.Error()))
			}
		}
	}
}

// Stop halts the frame loop and waits for an in-flight frame to finish.
// Uploads that were already started complete, but their results are
// dropped once the owning layers are disposed.
func (t *Thread) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.cancel()
	done := t.loopDone
	t.running = false
	t.mu.Unlock()

	<-done
	t.vsync.Stop()
}

// Dispose releases every layer, the quad program, and the device. The
// frame loop must be stopped first; Dispose stops it if needed.
func (t *Thread) Dispose() {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return
	}
	t.manager.Dispose()
	t.device.DestroyProgram(t.program)
	t.program = 0
	t.device.Close()
	t.initialized = false
}

// Resize reallocates the viewport and invalidates every layer. There is
// no partial-resize optimization: everything re-uploads at the new
// size.
func (t *Thread) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if width == t.width && height == t.height {
		return
	}
	t.width = width
	t.height = height
	if t.manager != nil {
		t.manager.InvalidateAll()
	}
}

// Stats returns a snapshot of frame telemetry.
func (t *Thread) Stats() FrameStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := FrameStats{
		Frames:        t.vsync.FrameCount(),
		AverageFPS:    t.vsync.AverageFPS(),
		DroppedFrames: t.vsync.DroppedFrames(),
		LastFrameTime: t.lastFrameTime,
	}
	if t.manager != nil {
		stats.TextureMemory = t.manager.TextureMemory()
	}
	return stats
}
