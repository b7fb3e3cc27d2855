package scene

import (
	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// options is carried from Begin to Ready.
type options struct {
	label           string
	clearColor      wgpu.Color
	pipelineOptions []pipeline.PipelineBuilderOption
}

func defaultOptions() options {
	return options{
		label:      "scene",
		clearColor: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// SceneBuilderOption is a functional option applied when a scene is started with New.
type SceneBuilderOption func(*options)

// WithLabel sets the label prefixed to every GPU object the scene creates and to its log lines.
// Default is "scene"; an empty label keeps it.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLabel(label string) SceneBuilderOption {
	return func(o *options) {
		o.label = common.Coalesce(label, o.label)
	}
}

// WithClearColor sets the color the render pass clears to. Default is opaque black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClearColor(c wgpu.Color) SceneBuilderOption {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithPipelineOptions overrides raster state of the scene's render pipeline.
//
// Parameters:
//   - opts: pipeline options applied on top of the pipeline defaults
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPipelineOptions(opts ...pipeline.PipelineBuilderOption) SceneBuilderOption {
	return func(o *options) {
		o.pipelineOptions = append(o.pipelineOptions, opts...)
	}
}
