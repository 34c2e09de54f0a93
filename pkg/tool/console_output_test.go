package tool

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleWriterCommandEcho(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&ConsoleWriter{Out: &buf})

	logger.Info().
		Str("task", "lint").
		Bool("command", true).
		Msg("golangci-lint run --fix")

	assert.Contains(t, buf.String(), "lint: $ golangci-lint run --fix")
}

func TestConsoleWriterStatusMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&ConsoleWriter{Out: &buf})

	logger.Info().
		Str("task", "services-up").
		Msg("skipped")

	output := buf.String()
	assert.Contains(t, output, "services-up: skipped")
	assert.NotContains(t, output, "$")
}

func TestConsoleWriterError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&ConsoleWriter{Out: &buf})

	logger.Error().Msg("Failed target migrate")

	assert.Contains(t, buf.String(), "Error: Failed target migrate")
}

func TestConsoleWriterRejectsGarbage(t *testing.T) {
	writer := &ConsoleWriter{Out: &bytes.Buffer{}}

	_, err := writer.Write([]byte("not json"))
	require.Error(t, err)
}
