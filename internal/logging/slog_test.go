package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_File_EchoesErrorsToConsole(t *testing.T) {
	var console, file bytes.Buffer
	m := NewSlogManager(&console)
	m.Setup(&file, "info", nil)

	m.Logger().Info("hello file")
	m.Logger().Error("disk full")

	assert.Contains(t, file.String(), "hello file")
	assert.Contains(t, file.String(), "disk full")
	assert.NotContains(t, console.String(), "hello file")
	assert.Contains(t, console.String(), "disk full")
}

func TestSetup_NoFile_WritesToConsole(t *testing.T) {
	var console bytes.Buffer
	m := NewSlogManager(&console)
	m.Setup(nil, "info", nil)
	m.Logger().Info("hello console")

	assert.Contains(t, console.String(), "hello console")
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"DEBUG", true},
		{"info", false},
		{"warn", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager(&buf)
			m.Setup(nil, tt.level, nil)

			m.Logger().Debug("debug msg")
			m.Logger().Error("error msg")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug msg")))
			assert.Contains(t, buf.String(), "error msg")
		})
	}
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager(nil)

	m.Setup(&buf1, "info", nil)
	m.Logger().Info("first")

	m.Setup(&buf2, "info", nil)
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second", "old file should not receive new logs")
	assert.Contains(t, buf2.String(), "second")
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager(&buf)
	m.Setup(nil, "info", func() []slog.Attr {
		return []slog.Attr{slog.String("document", "towns")}
	})

	m.Logger().Info("saved")
	assert.Contains(t, buf.String(), "document=towns")
}

func TestSetup_TimestampIsUTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager(&buf)
	m.Setup(nil, "info", nil)

	m.Logger().Info("stamp")
	assert.Regexp(t, `time=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`, buf.String())
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager(nil)
	assert.Equal(t, slog.Default(), m.Logger())
}

func TestMultiHandler_SkipsNilAndDisabled(t *testing.T) {
	var debugBuf, errBuf bytes.Buffer
	h := NewMultiHandler(
		nil,
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("set", "towns").WithGroup("g")

	logger.Info("only debug handler", "k", 1)

	assert.Contains(t, debugBuf.String(), "only debug handler")
	assert.Contains(t, debugBuf.String(), "set=towns")
	assert.Contains(t, debugBuf.String(), "g.k=1")
	assert.Empty(t, errBuf.String())
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("write failed")
}

func TestMultiHandler_ReportsErrorsAfterDelivering(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)},
		slog.NewTextHandler(&buf, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "saved", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, buf.String(), "saved", "the healthy handler still gets the record")
}

func TestContextHandler_SkipsEmptyAndPresentKeys(t *testing.T) {
	var buf bytes.Buffer
	document := ""
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), func() []slog.Attr {
		return []slog.Attr{
			slog.String("command", "import"),
			slog.String("document", document),
		}
	}))

	logger.Info("opening storage")
	assert.Contains(t, buf.String(), "command=import")
	assert.NotContains(t, buf.String(), "document=")

	buf.Reset()
	document = "towns"
	logger.Info("saved", "command", "autosave")
	assert.Contains(t, buf.String(), "document=towns")
	assert.Contains(t, buf.String(), "command=autosave")
	assert.NotContains(t, buf.String(), "command=import")
}
