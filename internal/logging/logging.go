// Package logging builds the process logger for the roster CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLevel keeps the terminal quiet unless something went wrong.
const DefaultLevel = "warn"

// Options selects where logs go and how verbose they are.
type Options struct {
	// Level is a zap level name (debug, info, warn, error). Empty means DefaultLevel.
	Level string

	// File, when set, receives logs through a size-rotated writer instead of stderr.
	File string

	// Stderr overrides the console destination. Defaults to os.Stderr.
	Stderr io.Writer
}

// New returns a development-style console logger.
func New(opts Options) (*zap.Logger, error) {
	levelName := strings.TrimSpace(opts.Level)
	if levelName == "" {
		levelName = DefaultLevel
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	var sink zapcore.WriteSyncer
	if opts.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	} else {
		out := opts.Stderr
		if out == nil {
			out = os.Stderr
		}
		sink = zapcore.AddSync(out)
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)
	return zap.New(core), nil
}
