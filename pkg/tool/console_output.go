package tool

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// toolEvent is the shape of the events the tool emits: a target name, a flag
// marking echoed commands, and optionally a rendered error trace.
type toolEvent struct {
	Level   string `json:"level"`
	Task    string `json:"task"`
	Command bool   `json:"command"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

var levelColors = map[string]string{
	"trace": "[blue]",
	"debug": "[blue]",
	"warn":  "[yellow]",
	"error": "[red]",
	"fatal": "[red]",
}

// ConsoleWriter renders the tool's zerolog events as colored console lines,
// prefixed with the target they belong to. Echoed commands get a shell-style
// prompt so they stand out from status messages.
type ConsoleWriter struct {
	Out    io.Writer
	buffer strings.Builder
	lock   sync.Mutex
}

func NewConsoleWriter() *ConsoleWriter {
	return &ConsoleWriter{Out: os.Stderr}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt toolEvent
	err = json.Unmarshal(p, &evt)
	if err != nil {
		return 0, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()

	color, ok := levelColors[evt.Level]
	if !ok {
		color = "[green]"
	}
	w.buffer.WriteString(color)

	if evt.Task != "" {
		w.buffer.WriteString(evt.Task + ": ")
	}

	switch {
	case evt.Command:
		w.buffer.WriteString("$ ")
	case evt.Level == "error" || evt.Level == "fatal":
		w.buffer.WriteString("Error: ")
	}

	w.buffer.WriteString(evt.Message)

	if evt.Error != "" {
		w.buffer.WriteString("\n")
		w.buffer.WriteString(evt.Error)
	}

	if os.Getenv("RIDESHARE_DEBUG") != "" {
		w.buffer.WriteString("\n  raw: ")
		w.buffer.WriteString(strings.TrimSpace(string(p)))
	}

	w.buffer.WriteString("[reset]\n")

	out := w.Out
	if out == nil {
		out = os.Stderr
	}
	return colorstring.Fprint(out, w.buffer.String())
}

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, os.Getenv("RIDESHARE_DEBUG") != "")
	}
}
