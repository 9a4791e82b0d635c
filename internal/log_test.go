package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigureLogger(t *testing.T) {
	require.NotNil(t, GetLogger())

	require.NoError(t, ConfigureLogger("warn", false))
	l := GetLogger()
	assert.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, ConfigureLogger("loud", true))
	assert.Same(t, l, GetLogger(), "a bad level keeps the current logger")
}
