package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/assert"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servoclock.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Level = "debug"

	logger, closer, err := New(cfg)
	assert.NilError(t, err)
	logger.Debugw("register write", "reg", 0xFE)
	assert.NilError(t, closer())

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(data), `"msg":"register write"`), string(data))
	assert.Assert(t, strings.Contains(string(data), `"reg":254`), string(data))
}

func TestNewRejectsLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.ErrorContains(t, err, "loud")
}
