package stdlogger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/logger/adapter/stdlogger"
)

type line struct {
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// capture points the global logger at a buffer for the duration of the test.
func capture(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	previous := log.Logger
	previousLevel := zerolog.GlobalLevel()

	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(level)

	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(previousLevel)
	})

	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []line {
	t.Helper()

	var out []line

	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}

		var l line
		require.NoError(t, json.Unmarshal([]byte(raw), &l))

		out = append(out, l)
	}

	return out
}

func TestLevelsAndComponent(t *testing.T) {
	buf := capture(t, zerolog.InfoLevel)

	badgerLog := stdlogger.New(stdlogger.WithComponent("badger"))

	badgerLog.Infof("Replaying file id: %d at offset: %d\n", 3, 120)
	badgerLog.Warningf("value log %s is not empty\n", "000001.vlog")
	badgerLog.Errorf("compaction failed: %v", "disk full")
	badgerLog.Debugf("hidden below info level")

	assert.Equal(t, []line{
		{Level: "info", Component: "badger", Message: "Replaying file id: 3 at offset: 120"},
		{Level: "warn", Component: "badger", Message: "value log 000001.vlog is not empty"},
		{Level: "error", Component: "badger", Message: "compaction failed: disk full"},
	}, lines(t, buf))
}

func TestDebugEnabled(t *testing.T) {
	buf := capture(t, zerolog.DebugLevel)

	stdlogger.New().Debugf("opening %s", "/var/lib/inventory")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "debug", got[0].Level)
	assert.Empty(t, got[0].Component)
	assert.Equal(t, "opening /var/lib/inventory", got[0].Message)
}
