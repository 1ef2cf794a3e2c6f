package control

import (
	"strings"

	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// lineSink forwards each log line to a channel, dropping lines when the
// reader falls behind.
type lineSink struct {
	ch chan string
}

func (s lineSink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	select {
	case s.ch <- line:
	default:
		// Drop if channel full
	}
	return len(p), nil
}

func (s lineSink) Sync() error { return nil }

// newChannelLogger returns a logger that writes console-encoded lines to ch.
func newChannelLogger(ch chan string, level zapcore.Level) golog.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), lineSink{ch: ch}, level)
	return zap.New(core).Sugar()
}
