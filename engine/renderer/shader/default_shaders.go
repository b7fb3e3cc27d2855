package shader

// EntryPoint is the entry point name every scene shader module must export.
const EntryPoint = "main"

// DefaultVertexWGSL transforms vertices by the rotation then projection uniforms
// (bindings 0 and 1) and forwards world position, normal and colour.
const DefaultVertexWGSL = `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) colour: vec3<f32>,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) world_position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) colour: vec3<f32>,
}

@group(0) @binding(0) var<uniform> projection: mat4x4<f32>;
@group(0) @binding(1) var<uniform> rotation: mat4x4<f32>;

@vertex
fn main(input: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let world = rotation * vec4<f32>(input.position, 1.0);
    out.clip_position = projection * world;
    out.world_position = world.xyz;
    out.normal = (rotation * vec4<f32>(input.normal, 0.0)).xyz;
    out.colour = input.colour;
    return out;
}
`

// DefaultFragmentWGSL accumulates diffuse contribution from up to ten point
// lights (bindings 2 and 3). With zero lights the shape renders black.
const DefaultFragmentWGSL = `struct Light {
    position: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    _pad: f32,
}

struct FragmentInput {
    @location(0) world_position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) colour: vec3<f32>,
}

@group(0) @binding(2) var<uniform> lights: array<Light, 10>;
@group(0) @binding(3) var<uniform> light_count: u32;

@fragment
fn main(input: FragmentInput) -> @location(0) vec4<f32> {
    let n = normalize(input.normal);
    var lit = vec3<f32>(0.0, 0.0, 0.0);
    let count = min(light_count, 10u);
    for (var i = 0u; i < count; i = i + 1u) {
        let l = lights[i];
        let dir = normalize(l.position - input.world_position);
        lit = lit + l.color * l.intensity * max(dot(n, dir), 0.0);
    }
    return vec4<f32>(input.colour * lit, 1.0);
}
`
