package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_Level(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)

	require.NoError(t, l.Init("warn"))
	assert.True(t, l.Log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, l.Log.Core().Enabled(zapcore.InfoLevel))
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	err := l.Init("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	log := zap.NewExample()
	assert.Same(t, log, OrNop(log))
}
