package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/shower/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	p := NewProfiler(time.Second)
	start := p.lastTime

	for i := 1; i < 30; i++ {
		require.False(t, p.tick(start.Add(time.Duration(i)*10*time.Millisecond)))
	}
	assert.Empty(t, buf.String())

	require.True(t, p.tick(start.Add(2*time.Second)))
	assert.InDelta(t, 15, p.Last().FPS, 1e-9)
	assert.Greater(t, p.Last().SysMB, 0.0)
	assert.Contains(t, buf.String(), "msg=profiler")
	assert.Contains(t, buf.String(), "fps=15")

	assert.False(t, p.tick(start.Add(2*time.Second+time.Millisecond)))
}

func TestNewProfilerDefaultInterval(t *testing.T) {
	p := NewProfiler(0)
	assert.Equal(t, time.Second, p.updateInterval)
}
