package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/shower/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// EncodeWrites records each write as a copy from a freshly created CopySrc staging buffer into
// the target binding's buffer, in order. The staging buffers are returned so the caller can
// release them after the command buffer is submitted. On error the staging buffers created so
// far are released and nil is returned.
//
// Parameters:
//   - dev: the device to create staging buffers on
//   - encoder: the encoder to record copies into
//   - writes: the writes to encode
//
// Returns:
//   - []renderer.Resource: the staging buffers
//   - error: an error if a target buffer is missing or creation or copy fails
func EncodeWrites(dev renderer.Device, encoder renderer.CommandEncoder, writes []BufferWrite) ([]renderer.Resource, error) {
	staging := make([]renderer.Resource, 0, len(writes))
	fail := func(err error) ([]renderer.Resource, error) {
		for _, s := range staging {
			s.Release()
		}
		return nil, err
	}

	for _, w := range writes {
		dst := w.Provider.Buffer(w.Binding)
		if dst == nil {
			return fail(fmt.Errorf("%s: no buffer at binding %d", w.Provider.Label(), w.Binding))
		}
		size := uint64(len(w.Data))
		if w.Offset+size > w.Provider.BufferSize(w.Binding) {
			return fail(fmt.Errorf("%s: write of %d bytes at offset %d overflows binding %d", w.Provider.Label(), size, w.Offset, w.Binding))
		}

		src, err := dev.CreateBuffer(&renderer.BufferDescriptor{
			Label:    fmt.Sprintf("%s staging %d", w.Provider.Label(), w.Binding),
			Usage:    wgpu.BufferUsageCopySrc,
			Size:     size,
			Contents: w.Data,
		})
		if err != nil {
			return fail(fmt.Errorf("staging buffer for binding %d: %w", w.Binding, err))
		}
		staging = append(staging, src)

		if err := encoder.CopyBufferToBuffer(src, 0, dst, w.Offset, size); err != nil {
			return fail(fmt.Errorf("copy to binding %d: %w", w.Binding, err))
		}
	}
	return staging, nil
}
