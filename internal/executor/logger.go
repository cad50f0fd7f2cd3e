package executor

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging for directive execution.
type Logger struct {
	zap *zap.Logger
}

// NewLogger creates a Logger that appends JSON records to logPath. An empty
// path disables logging. With development true, a console encoder is used
// instead.
func NewLogger(logPath string, development bool) (*Logger, error) {
	if logPath == "" {
		return &Logger{zap: zap.NewNop()}, nil
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	if development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(logFile), zapcore.InfoLevel)
	return &Logger{zap: zap.New(core)}, nil
}

// NopLogger returns a Logger that discards everything.
func NopLogger() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Close syncs buffered records.
func (l *Logger) Close() error {
	return l.zap.Sync()
}

// DirectiveApplied logs one directive outcome.
func (l *Logger) DirectiveApplied(s DirectiveStatus) {
	fields := []zap.Field{
		zap.String("kind", s.Kind),
		zap.String("file_path", s.FilePath),
		zap.Bool("success", s.Success),
	}
	if s.FromPath != "" {
		fields = append(fields, zap.String("from_path", s.FromPath))
	}
	if s.Error != "" {
		fields = append(fields, zap.String("error", s.Error))
	}
	if s.Tier > 0 {
		fields = append(fields, zap.String("match_tier", s.Tier.String()))
	}
	l.zap.Info("directive applied", fields...)
}

// ApplyFinished logs the batch summary.
func (l *Logger) ApplyFinished(baseDir string, total, failed int) {
	l.zap.Info("apply finished",
		zap.String("base_dir", baseDir),
		zap.Int("directives", total),
		zap.Int("failed", failed),
	)
}

// Error logs an error that prevented the apply call from proceeding.
func (l *Logger) Error(msg string, err error) {
	l.zap.Error(msg, zap.Error(err))
}
