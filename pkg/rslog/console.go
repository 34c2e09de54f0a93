package rslog

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/muyo/sno"
	"github.com/rs/zerolog"
)

// Console returns a writer that renders log events for terminals. The request
// ID sits between the timestamp and the level so concurrent requests can be
// told apart at a glance.
func Console(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	writer.PartsOrder = []string{
		zerolog.TimestampFieldName,
		"req",
		zerolog.LevelFieldName,
		zerolog.CallerFieldName,
		zerolog.MessageFieldName,
	}
	writer.FormatFieldValue = formatFieldValue

	return writer
}

func formatFieldValue(value interface{}) string {
	str, ok := value.(string)
	if !ok {
		if value == nil {
			return strings.Repeat(" ", sno.SizeEncoded)
		}
		return fmt.Sprint(value)
	}

	// the writer doesn't tell us the field name, so request IDs are
	// recognized by their fixed encoded length
	if len(str) == sno.SizeEncoded {
		return "\x1b[36m" + str + "\x1b[0m"
	}

	// eris stack traces arrive as quoted multi-line strings; unquote them so
	// each frame gets its own line
	if strings.Contains(str, `\n`) {
		if unquoted, err := strconv.Unquote(str); err == nil {
			return unquoted
		}
	}

	return str
}
