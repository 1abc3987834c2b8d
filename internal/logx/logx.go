// Package logx is the ambient logging stack: zap for structured events
// and lumberjack for file rotation, the same pairing axfor-aproxy's
// pkg/observability.Logger wraps around *zap.Logger. The migration engine
// writes to the five sinks named in the operator-facing output contract:
// all.log, errors-only.log, report-only.log, views.log, and one file per
// view that failed to create under not_created_views/.
package logx

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a *zap.Logger whose core fans every event out to all.log,
// and additionally to errors-only.log for Error-and-above events.
type Logger struct {
	*zap.Logger

	dir          string
	viewSink     *lumberjack.Logger
	reportSink   *lumberjack.Logger
	rejectedSink *lumberjack.Logger
}

// New builds the logger rooted at dir, creating dir and its
// not_created_views subdirectory if they do not exist.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Join(dir, "not_created_views"), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	allSink := zapcore.AddSync(rotatingFile(dir, "all.log"))
	errSink := zapcore.AddSync(rotatingFile(dir, "errors-only.log"))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, allSink, zapcore.DebugLevel),
		zapcore.NewCore(encoder, errSink, zapcore.ErrorLevel),
	)

	return &Logger{
		Logger:       zap.New(core),
		dir:          dir,
		viewSink:     rotatingFile(dir, "views.log"),
		reportSink:   rotatingFile(dir, "report-only.log"),
		rejectedSink: rotatingFile(dir, "rejected-rows.log"),
	}, nil
}

func rotatingFile(dir, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
}

// LogView appends one line to views.log describing the outcome of issuing
// a CREATE VIEW statement, and, on failure, writes the full DDL text to
// not_created_views/<name>.sql per §4.B.
func (l *Logger) LogView(name, sqlText string, viewErr error) {
	if viewErr == nil {
		fmt.Fprintf(l.viewSink, "OK   %s\n", name)
		l.Info("view_created", zap.String("view", name))
		return
	}

	fmt.Fprintf(l.viewSink, "FAIL %s: %v\n", name, viewErr)
	l.Error("view_failed", zap.String("view", name), zap.Error(viewErr))

	path := filepath.Join(l.dir, "not_created_views", name+".sql")
	_ = os.WriteFile(path, []byte(sqlText+"\n"), 0o644)
}

// RejectedRowWriter exposes the rejected-rows sink for the Data Pipeline's
// row-level fallback logging (§4.F point 5).
func (l *Logger) RejectedRowWriter() *lumberjack.Logger {
	return l.rejectedSink
}

// WriteReport appends the final summary table (built by internal/report)
// to report-only.log.
func (l *Logger) WriteReport(table string) error {
	_, err := l.reportSink.Write([]byte(table))
	return err
}

// Close flushes the zap core and closes the rotating file sinks.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	_ = l.viewSink.Close()
	_ = l.reportSink.Close()
	return l.rejectedSink.Close()
}
