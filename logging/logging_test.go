package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/warp/daybook/logging"
)

func TestNew_DebugLogsAtDebugLevel(t *testing.T) {
	logger, err := logging.New(logging.ModeDebug)

	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_ReleaseStartsAtInfo(t *testing.T) {
	logger, err := logging.New("release")

	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
