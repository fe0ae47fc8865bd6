package sysstats

import (
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	stats := Collect(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.GreaterOrEqual(t, stats.CPULoad, 0.0)
	assert.GreaterOrEqual(t, stats.RamUsedMB, 0.0)
	if runtime.GOOS == "linux" {
		assert.Greater(t, stats.RamTotalMB, 0.0)
		assert.Greater(t, stats.ProcessRSSMB, 0.0)
		assert.LessOrEqual(t, stats.RamUsedMB, stats.RamTotalMB)
		assert.Greater(t, stats.DiskTotalGB, 0.0)
		assert.LessOrEqual(t, stats.DiskUsedGB, stats.DiskTotalGB)
	}
}
