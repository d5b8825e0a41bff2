package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json格式与级别", func(t *testing.T) {
		l := New(Options{Level: "warn", Format: "json"})
		assert.Equal(t, logrus.WarnLevel, l.GetLevel())
		_, ok := l.Formatter.(*logrus.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("非法级别回退为info", func(t *testing.T) {
		l := New(Options{Level: "verbose"})
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
		_, ok := l.Formatter.(*logrus.TextFormatter)
		assert.True(t, ok)
	})

	t.Run("输出到文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l := New(Options{Level: "info", Output: path})
		l.Info("hello")
		assert.FileExists(t, path)
	})
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	LogError(l, "dispense", "Execute", map[string]int{"quantity": 5}, errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispense", entry["module"])
	assert.Equal(t, "Execute", entry["funcName"])
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "error", entry["level"])
}

func TestSetDefault(t *testing.T) {
	prev := L()
	defer SetDefault(prev)

	l := logrus.New()
	SetDefault(l)
	assert.Same(t, l, L())
}
