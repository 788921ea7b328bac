package logger

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// syncBuffer cho phép AsyncHook ghi từ goroutine khác
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(cfg *LogConfig, out io.Writer) (*logrus.Logger, *AsyncHook) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(io.Discard)
	l.AddHook(&serviceHook{service: "app"})
	l.AddHook(NewFilterHook(cfg))
	hook := NewAsyncHookWithWriters([]io.Writer{out}, 10)
	l.AddHook(hook)
	return l, hook
}

func TestAsyncHook_WritesAndFlushesOnClose(t *testing.T) {
	out := &syncBuffer{}
	l, hook := newTestLogger(&LogConfig{}, out)

	l.WithField("module", "employee").Info("created employee")
	l.Warn("second line")
	assert.NoError(t, hook.Close())

	text := out.String()
	assert.Contains(t, text, "created employee")
	assert.Contains(t, text, "second line")
	assert.Contains(t, text, `"service":"app"`)
	assert.NotContains(t, text, filteredKey)
}

func TestFilterHook_ModuleAndLevel(t *testing.T) {
	out := &syncBuffer{}
	l, hook := newTestLogger(&LogConfig{FilterModules: "auth, message", FilterLevels: "info,error"}, out)

	l.WithField("module", "auth").Info("kept auth")
	l.WithField("module", "schedule").Info("dropped schedule")
	l.WithField("module", "message").Warn("dropped warn")
	l.Info("kept without module")
	assert.NoError(t, hook.Close())

	text := out.String()
	assert.Contains(t, text, "kept auth")
	assert.Contains(t, text, "kept without module")
	assert.NotContains(t, text, "dropped schedule")
	assert.NotContains(t, text, "dropped warn")
}

func TestParseFilter(t *testing.T) {
	assert.Nil(t, parseFilter(""))
	assert.Nil(t, parseFilter("*"))
	assert.Nil(t, parseFilter("auth,*"))
	assert.Equal(t, map[string]bool{"get": true, "post": true}, parseFilter("GET, post ,"))
}

func TestAsyncHook_FireAfterCloseWritesDirectly(t *testing.T) {
	out := &syncBuffer{}
	l, hook := newTestLogger(&LogConfig{}, out)
	assert.NoError(t, hook.Close())

	l.Error("after close")
	assert.True(t, strings.Contains(out.String(), "after close"))
}
