package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow()

	assert.Equal(t, "shower", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
}

func TestNewEngineWindowClampsSize(t *testing.T) {
	tests := []struct {
		name          string
		opts          []WindowBuilderOption
		width, height int
	}{
		{"within limits", []WindowBuilderOption{WithSize(800, 600)}, 800, 600},
		{"too large", []WindowBuilderOption{WithSize(4000, 3000)}, 1600, 1200},
		{"too small", []WindowBuilderOption{WithSize(10, 10)}, 320, 240},
		{"unset limits", []WindowBuilderOption{WithSizeLimits(0, 0, 0, 0), WithSize(4000, 10)}, 4000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEngineWindow(tt.opts...)
			assert.Equal(t, tt.width, w.Width())
			assert.Equal(t, tt.height, w.Height())
		})
	}
}

func TestKeyEventDispatch(t *testing.T) {
	w := newEngineWindow(WithTitle("keys"))
	var down, up []Key
	w.SetKeyDownCallback(func(k Key) { down = append(down, k) })
	w.SetKeyUpCallback(func(k Key) { up = append(up, k) })

	assert.False(t, w.keyEvent(KeyW, true))
	assert.False(t, w.keyEvent(KeyW, false))
	assert.False(t, w.keyEvent(KeyLeft, true))

	assert.Equal(t, []Key{KeyW, KeyLeft}, down)
	assert.Equal(t, []Key{KeyW}, up)
}

func TestEscapeQuitsWithoutCallback(t *testing.T) {
	w := newEngineWindow()
	called := false
	w.SetKeyDownCallback(func(Key) { called = true })
	w.SetKeyUpCallback(func(Key) { called = true })

	assert.True(t, w.keyEvent(KeyEscape, true))
	assert.False(t, w.keyEvent(KeyEscape, false))
	assert.False(t, called)
}

func TestResizeEvent(t *testing.T) {
	w := newEngineWindow()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.resizeEvent(640, 480)

	assert.Equal(t, [2]int{640, 480}, got)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
}

func TestCloseUninitialized(t *testing.T) {
	w := newEngineWindow()
	require.ErrorIs(t, w.Close(), errNotInitialized)
}
