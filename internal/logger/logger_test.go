package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	defer SetLogger(nil)

	SetLogger(nil)
	l := Logger()
	assert.NotNil(t, l)
	assert.Same(t, l, Logger())

	nop := zap.NewNop().Sugar()
	SetLogger(nop)
	assert.Same(t, nop, Logger())
}

func TestSetLevel(t *testing.T) {
	defer level.SetLevel(zapcore.InfoLevel)

	assert.NoError(t, SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}
