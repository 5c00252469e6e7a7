package orchestra

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightorchestra-go/types"
)

func TestCollectStatuses(t *testing.T) {
	d, host := startFakeDevice(t, "pico-a")
	d.reading = types.LightReading{Raw: 40000, Norm: 0.61, Lux: 610}

	statuses := CollectStatuses(context.Background(), []string{host, "127.0.0.1:1"}, 100*time.Millisecond)
	require.Len(t, statuses, 2)

	assert.True(t, statuses[0].Online)
	assert.Equal(t, "pico-a", statuses[0].DeviceID)
	assert.InDelta(t, 0.61, statuses[0].Norm, 1e-9)
	assert.InDelta(t, 610, statuses[0].Lux, 1e-9)

	assert.False(t, statuses[1].Online)
	assert.Equal(t, "n/a", statuses[1].DeviceID)
	assert.NotEmpty(t, statuses[1].Err)
}

func TestRenderStatuses(t *testing.T) {
	var sb strings.Builder
	RenderStatuses(&sb, []DeviceStatus{
		{Host: "10.0.0.5", DeviceID: "pico-a", Online: true, Norm: 0.75, Lux: 750},
		{Host: "10.0.0.6", DeviceID: "n/a", Online: false, Err: "connection refused"},
	})
	out := sb.String()

	assert.Contains(t, out, "pico-a")
	assert.Contains(t, out, "online")
	assert.Contains(t, out, "offline (connection refused)")
	assert.Contains(t, out, "[#######---] 0.75")
	assert.Contains(t, out, "[----------] 0.00")
}

func TestLightBar_Clamps(t *testing.T) {
	assert.Equal(t, "----------", lightBar(-1))
	assert.Equal(t, "##########", lightBar(2))
	assert.Equal(t, "#####-----", lightBar(0.5))
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picos.txt")
	body := "# classroom devices\n192.168.1.101\n\n192.168.1.102:8080\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	hosts, err := LoadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.101", "192.168.1.102:8080"}, hosts)
}

func TestLoadRoster_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picos.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n"), 0o644))

	_, err := LoadRoster(path)
	require.Error(t, err)
}
