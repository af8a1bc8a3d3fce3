//go:build !nogpu

// Package wgpu provides a GPU compositing device backed by gogpu/wgpu.
//
// Layer textures live on the GPU: uploads go through queue.WriteTexture
// and shader programs are compiled from WGSL to SPIR-V via naga. Quad
// compositing keeps a CPU mirror of every texture so Framebuffer can
// return pixels while wgpu render-pass readback is still incomplete;
// the mirror composites with the same transform and blend semantics the
// shaders express.
package wgpu

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/paint"
	"github.com/gogpu/paint/gpu"
	"github.com/gogpu/paint/raster"
)

func init() {
	gpu.Register(gpu.DeviceWgpu, func() gpu.Device { return New() })
}

// texture pairs a GPU texture with its CPU mirror.
type texture struct {
	hal    hal.Texture
	mirror *image.RGBA
}

// program holds the compiled shader modules of a quad program.
type program struct {
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
}

// Device implements gpu.Device on gogpu/wgpu.
//
// Device is not safe for concurrent use. The compositor thread owns it
// and serializes all calls.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when the device came from a provider and
	// must not be destroyed on Close.
	externalDevice bool
	adapterName    string

	textures map[gpu.TextureID]*texture
	programs map[gpu.ProgramID]*program
	nextID   uint64

	framebuffer *image.RGBA
	canvas      *raster.Context

	stats       gpu.Stats
	initialized bool
}

// New creates an uninitialized wgpu device. Init brings up a standalone
// Vulkan device unless SetDeviceProvider supplied a shared one first.
func New() *Device {
	return &Device{}
}

// Name returns "wgpu".
func (d *Device) Name() string { return gpu.DeviceWgpu }

// SetDeviceProvider switches the device to shared GPU resources from an
// external provider. The provider must expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue. Must be called
// before Init.
func (d *Device) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	d.device = device
	d.queue = queue
	d.externalDevice = true
	return nil
}

// Init brings up the GPU. Wrapped gpu.ErrDeviceNotAvailable means no
// usable adapter was found and the caller should fall back to another
// device.
func (d *Device) Init() error {
	if d.initialized {
		return nil
	}

	if d.device == nil {
		if err := d.initGPU(); err != nil {
			return fmt.Errorf("%w: %w", gpu.ErrDeviceNotAvailable, err)
		}
	}

	d.textures = make(map[gpu.TextureID]*texture)
	d.programs = make(map[gpu.ProgramID]*program)
	d.initialized = true
	paint.Logger().Info("wgpu: device initialized",
		slog.String("adapter", d.adapterName),
		slog.Bool("shared", d.externalDevice))
	return nil
}

// initGPU creates a standalone Vulkan device. This is the fallback path
// when no external provider was supplied.
func (d *Device) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	d.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	d.device = openDev.Device
	d.queue = openDev.Queue
	d.adapterName = selected.Info.Name
	return nil
}

// CreateTexture allocates a GPU texture, uploads the pixels, and keeps
// a CPU mirror for compositing.
func (d *Device) CreateTexture(width, height int, pixels []byte) (gpu.TextureID, error) {
	if !d.initialized {
		return 0, gpu.ErrNotInitialized
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return 0, fmt.Errorf("%w: %dx%d with %d bytes", gpu.ErrInvalidTextureSize, width, height, len(pixels))
	}

	d.nextID++
	id := gpu.TextureID(d.nextID)

	halTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("paint-layer-%d", id),
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w", err)
	}

	tex := &texture{
		hal:    halTex,
		mirror: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	copy(tex.mirror.Pix, pixels[:width*height*4])
	d.writeTexture(tex, width, height)
	d.textures[id] = tex
	return id, nil
}

// UpdateTexture replaces a texture's pixels in place.
func (d *Device) UpdateTexture(id gpu.TextureID, pixels []byte) error {
	if !d.initialized {
		return gpu.ErrNotInitialized
	}
	tex, ok := d.textures[id]
	if !ok {
		return gpu.ErrUnknownTexture
	}
	if len(pixels) != len(tex.mirror.Pix) {
		return fmt.Errorf("%w: got %d bytes, texture needs %d", gpu.ErrInvalidTextureSize, len(pixels), len(tex.mirror.Pix))
	}
	copy(tex.mirror.Pix, pixels)
	b := tex.mirror.Bounds()
	d.writeTexture(tex, b.Dx(), b.Dy())
	return nil
}

// writeTexture uploads the mirror to the GPU texture.
func (d *Device) writeTexture(tex *texture, width, height int) {
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex.hal,
			MipLevel: 0,
		},
		tex.mirror.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * 4),
			RowsPerImage: uint32(height),
		},
		&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	)
	d.stats.UploadCalls++
}

// DestroyTexture releases a texture. Unknown handles are ignored.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	tex, ok := d.textures[id]
	if !ok {
		return
	}
	if tex.hal != nil {
		d.device.DestroyTexture(tex.hal)
	}
	delete(d.textures, id)
}

// CompileProgram compiles a WGSL vertex/fragment pair to SPIR-V shader
// modules.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramID, error) {
	if !d.initialized {
		return 0, gpu.ErrNotInitialized
	}

	vertex, err := d.compileModule("paint-quad-vertex", vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("wgpu: vertex shader: %w", err)
	}
	fragment, err := d.compileModule("paint-quad-fragment", fragmentSrc)
	if err != nil {
		d.device.DestroyShaderModule(vertex)
		return 0, fmt.Errorf("wgpu: fragment shader: %w", err)
	}

	d.nextID++
	id := gpu.ProgramID(d.nextID)
	d.programs[id] = &program{vertex: vertex, fragment: fragment}
	return id, nil
}

// compileModule compiles WGSL source to a SPIR-V shader module.
func (d *Device) compileModule(label, wgslSource string) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	return d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirvCode,
		},
	})
}

// DestroyProgram releases a program's shader modules.
func (d *Device) DestroyProgram(id gpu.ProgramID) {
	prog, ok := d.programs[id]
	if !ok {
		return
	}
	if prog.vertex != nil {
		d.device.DestroyShaderModule(prog.vertex)
	}
	if prog.fragment != nil {
		d.device.DestroyShaderModule(prog.fragment)
	}
	delete(d.programs, id)
}

// BeginFrame allocates or clears the output framebuffer.
func (d *Device) BeginFrame(width, height int) error {
	if !d.initialized {
		return gpu.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", gpu.ErrInvalidTextureSize, width, height)
	}
	if d.framebuffer == nil || d.framebuffer.Bounds().Dx() != width || d.framebuffer.Bounds().Dy() != height {
		d.framebuffer = image.NewRGBA(image.Rect(0, 0, width, height))
	} else {
		for i := range d.framebuffer.Pix {
			d.framebuffer.Pix[i] = 0
		}
	}
	d.canvas = raster.NewContext(d.framebuffer)
	return nil
}

// DrawTexturedQuad composites the texture's mirror into the framebuffer
// with the layer transform, opacity, and blend mode.
func (d *Device) DrawTexturedQuad(prog gpu.ProgramID, tex gpu.TextureID, dst paint.Rect, uniforms gpu.QuadUniforms) error {
	if !d.initialized {
		return gpu.ErrNotInitialized
	}
	if d.canvas == nil {
		return fmt.Errorf("wgpu: DrawTexturedQuad before BeginFrame")
	}
	if _, ok := d.programs[prog]; !ok {
		return gpu.ErrUnknownProgram
	}
	t, ok := d.textures[tex]
	if !ok {
		return gpu.ErrUnknownTexture
	}

	c := d.canvas
	c.Save()
	defer c.Restore()

	tr := uniforms.Transform
	if tr.TranslateX != 0 || tr.TranslateY != 0 {
		c.Translate(tr.TranslateX, tr.TranslateY)
	}
	if tr.Rotation != 0 {
		c.Translate(tr.OriginX, tr.OriginY)
		c.Rotate(tr.Rotation)
		c.Translate(-tr.OriginX, -tr.OriginY)
	}
	if tr.ScaleX != 1 || tr.ScaleY != 1 {
		c.Scale(tr.ScaleX, tr.ScaleY)
	}
	c.SetGlobalAlpha(uniforms.Opacity)
	c.SetCompositingMode(uniforms.Mode)
	c.DrawImage(t.mirror, paint.Rect{}, dst)

	d.stats.DrawCalls++
	return nil
}

// Framebuffer returns the current frame's pixels.
func (d *Device) Framebuffer() *image.RGBA { return d.framebuffer }

// Stats reports resource usage and call counts.
func (d *Device) Stats() gpu.Stats {
	s := d.stats
	s.TextureCount = len(d.textures)
	for _, tex := range d.textures {
		s.TextureMemory += uint64(len(tex.mirror.Pix))
	}
	return s
}

// Close releases all GPU resources in reverse order of creation.
// Shared devices from SetDeviceProvider are not destroyed.
func (d *Device) Close() {
	if !d.initialized {
		return
	}

	for id := range d.programs {
		d.DestroyProgram(id)
	}
	for id := range d.textures {
		d.DestroyTexture(id)
	}

	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.instance = nil
	d.queue = nil
	d.framebuffer = nil
	d.canvas = nil
	d.initialized = false
}

var _ gpu.Device = (*Device)(nil)
