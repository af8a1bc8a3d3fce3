// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

// WGSL sources for the shared quad program. Every layer and tile is
// drawn with the same program; per-draw variation goes through the
// transform and opacity uniforms.

// QuadVertexShader positions a unit quad with a per-draw transform and
// passes texture coordinates through. The quad corners are generated
// from the vertex index so no vertex buffer is needed.
const QuadVertexShader = `
struct Uniforms {
    transform: mat3x3<f32>,
    opacity: f32,
}

@group(0) @binding(2) var<uniform> uniforms: Uniforms;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vertex_index: u32) -> VertexOutput {
    var out: VertexOutput;

    let x = f32((vertex_index << 1u) & 2u);
    let y = f32(vertex_index & 2u);

    let pos = uniforms.transform * vec3<f32>(x, y, 1.0);
    out.position = vec4<f32>(pos.x * 2.0 - 1.0, 1.0 - pos.y * 2.0, 0.0, 1.0);
    out.uv = vec2<f32>(x, y);

    return out;
}
`

// QuadFragmentShader samples the layer texture and scales its alpha by
// the opacity uniform.
const QuadFragmentShader = `
struct Uniforms {
    transform: mat3x3<f32>,
    opacity: f32,
}

@group(0) @binding(0) var layer_texture: texture_2d<f32>;
@group(0) @binding(1) var layer_sampler: sampler;
@group(0) @binding(2) var<uniform> uniforms: Uniforms;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    let color = textureSample(layer_texture, layer_sampler, uv);
    return vec4<f32>(color.rgb, color.a * uniforms.opacity);
}
`
