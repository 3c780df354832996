package performance

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogTracker writes one info entry per execution.
type LogTracker struct {
	log *zap.Logger
}

// NewLogTracker returns a tracker logging to log.
func NewLogTracker(log *zap.Logger) *LogTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogTracker{log: log.Named("performance")}
}

// NewFileTracker returns a tracker appending JSON lines to the file at path.
func NewFileTracker(path string) (*LogTracker, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("performance: open %s: %w", path, err)
	}
	return &LogTracker{log: log}, nil
}

func (t *LogTracker) TrackExecution(label string, start, end time.Time, args []any) {
	t.log.Info("execution",
		zap.String("label", label),
		zap.Time("start", start),
		zap.Duration("duration", end.Sub(start)),
		zap.String("args", fmt.Sprint(args)))
}

// Dispose flushes buffered entries.
func (t *LogTracker) Dispose() error {
	err := t.log.Sync()
	if isSyncNoise(err) {
		return nil
	}
	return err
}
