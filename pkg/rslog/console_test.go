package rslog

import (
	"strconv"
	"strings"
	"testing"

	"github.com/muyo/sno"
	"github.com/stretchr/testify/assert"
)

func TestFormatFieldValueRequestID(t *testing.T) {
	reqID := sno.New(0).String()

	formatted := formatFieldValue(reqID)
	assert.True(t, strings.HasPrefix(formatted, "\x1b[36m"))
	assert.Contains(t, formatted, reqID)
}

func TestFormatFieldValueStackTrace(t *testing.T) {
	trace := strconv.Quote("failed\nmain.run\nmain.main")

	formatted := formatFieldValue(trace)
	assert.Equal(t, "failed\nmain.run\nmain.main", formatted)
}

func TestFormatFieldValuePassthrough(t *testing.T) {
	assert.Equal(t, "plain value", formatFieldValue("plain value"))
	assert.Equal(t, "42", formatFieldValue(42))
	assert.Equal(t, strings.Repeat(" ", sno.SizeEncoded), formatFieldValue(nil))
}
