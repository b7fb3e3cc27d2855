package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type under the WGSL layout rules.
// Used to compute MinBindingSize for buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// Binding describes one @group/@binding resource declared by a WGSL module.
type Binding struct {
	Group   int
	Name    string
	Entry   wgpu.BindGroupLayoutEntry
	TypeRef string
}

// Reflection is the interface a WGSL module exposes to the pipeline:
// its entry point, the buffers it binds and the vertex inputs it reads.
type Reflection struct {
	Stage        Stage
	EntryPoint   string
	Bindings     []Binding
	VertexLayout *wgpu.VertexBufferLayout
}
