package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogOutput(t *testing.T) {
	t.Run("Interactive screen gets no log lines", func(t *testing.T) {
		assert.Equal(t, io.Discard, logOutput(true))
	})

	t.Run("Replay logs to stderr", func(t *testing.T) {
		assert.Equal(t, os.Stderr, logOutput(false))
	})
}
