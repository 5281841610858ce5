package logging

import (
	"bytes"
	"testing"

	"github.com/indigo-web/formkit/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger(t *testing.T) {
	var buff bytes.Buffer
	logger := New(&buff, false)
	logger.Debug("hidden")
	logger.Info("decoded", zap.Int("fields", 2))
	require.NoError(t, logger.Sync())
	require.NotContains(t, buff.String(), "hidden")
	require.Contains(t, buff.String(), `"level":"info"`)
	require.Contains(t, buff.String(), `"fields":2`)

	buff.Reset()
	var printer config.Logger = NewPrintf(New(&buff, true))
	printer.Printf("removing %s: %s", "/tmp/formkit-x", "permission denied")
	require.Contains(t, buff.String(), `"level":"warn"`)
	require.Contains(t, buff.String(), `"message":"removing /tmp/formkit-x: permission denied"`)
}
