package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusHookCountsByLevel(t *testing.T) {
	hook := NewPrometheusHook("inventory-api-test")
	require.NotNil(t, hook.counter)

	warnBefore := testutil.ToFloat64(hook.counter.WithLabelValues("warn"))
	errorBefore := testutil.ToFloat64(hook.counter.WithLabelValues("error"))

	var buf bytes.Buffer
	l := zerolog.New(&buf).Hook(hook)

	l.Warn().Msg("low stock")
	l.Warn().Msg("low stock again")
	l.Error().Msg("device lookup failed")
	l.Log().Msg("no level")

	assert.InDelta(t, warnBefore+2, testutil.ToFloat64(hook.counter.WithLabelValues("warn")), 0)
	assert.InDelta(t, errorBefore+1, testutil.ToFloat64(hook.counter.WithLabelValues("error")), 0)
	assert.Same(t, hook.counter, NewPrometheusHook("other").counter, "registered once")
}

func TestErrorHandlerReportsWriteFailures(t *testing.T) {
	var buf bytes.Buffer

	previous := writeFailures
	writeFailures = &buf

	t.Cleanup(func() { writeFailures = previous })

	ErrorHandler(errors.New("no space left on device"))

	assert.Equal(t, "inventory-api: could not write log event: no space left on device\n", buf.String())
}
