// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "sync"

// Device name constants.
const (
	// DeviceSoftware is the CPU compositing fallback.
	DeviceSoftware = "software"
	// DeviceWgpu is the WebGPU device (gogpu/wgpu).
	DeviceWgpu = "wgpu"
)

// Factory creates a new device instance.
type Factory func() Device

var (
	registryMu sync.RWMutex
	devices    = make(map[string]Factory)

	// Priority order for device selection, first available wins.
	devicePriority = []string{DeviceWgpu, DeviceSoftware}
)

// Register registers a device factory under name, replacing any previous
// registration. Device packages call this from init.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	devices[name] = factory
}

// Unregister removes a device from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(devices, name)
}

// Available returns the registered device names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	return names
}

// IsRegistered reports whether a device with the given name exists.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := devices[name]
	return ok
}

// Get returns a new device instance by name, or nil if unregistered.
func Get(name string) Device {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := devices[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available device by priority: wgpu when its
// package is linked in, otherwise software. Returns nil only when no
// device is registered.
func Default() Device {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range devicePriority {
		if factory, ok := devices[name]; ok {
			if d := factory(); d != nil {
				return d
			}
		}
	}
	for _, factory := range devices {
		if d := factory(); d != nil {
			return d
		}
	}
	return nil
}
