// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/matrixorigin/moframe/pkg/common/moerr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig is the config of the global logger.
type LogConfig struct {
	// Level is the minimum enabled level: debug, info, warn, error, panic, fatal.
	Level string `toml:"level"`
	// Format of the output, console or json.
	Format string `toml:"format"`
	// Filename, when set, makes the logger write to a rotated file instead of stderr.
	Filename string `toml:"filename"`
	// MaxSize is the max size in MB of a log file before it gets rotated.
	MaxSize int `toml:"max-size"`
	// MaxDays is the max days to retain old log files.
	MaxDays int `toml:"max-days"`
	// MaxBackups is the max number of old log files to retain.
	MaxBackups int `toml:"max-backups"`
	// StacktraceLevel is the level at and above which a stacktrace is recorded.
	// Empty means fatal.
	StacktraceLevel string `toml:"stacktrace-level"`
}

// ZapSink pairs an encoder with its write syncer.
type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

func (cfg *LogConfig) getSinks() []ZapSink {
	sinks := make([]ZapSink, 0, 1)
	sinks = append(sinks, ZapSink{cfg.getEncoder(), cfg.getSyncer()})
	return sinks
}

func (cfg *LogConfig) getLevel() zap.AtomicLevel {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		panic(moerr.NewInternalError(context.TODO(), "unsupported log level: %s", cfg.Level))
	}
	return zap.NewAtomicLevelAt(lvl)
}

func (cfg *LogConfig) getOptions() []zap.Option {
	lvl := zapcore.FatalLevel
	if cfg.StacktraceLevel != "" {
		if err := lvl.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil {
			panic(moerr.NewInternalError(context.TODO(), "unsupported stacktrace level: %s", cfg.StacktraceLevel))
		}
	}
	return []zap.Option{zap.AddStacktrace(lvl), zap.AddCaller()}
}

func (cfg *LogConfig) getSyncer() zapcore.WriteSyncer {
	if cfg.Filename != "" {
		return getFileSyncer(cfg)
	}
	return getConsoleSyncer()
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	return getLoggerEncoder(cfg.Format)
}

func getLoggerEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "name",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000 -0700"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	default:
		panic(moerr.NewInternalError(context.TODO(), "unsupported log format: %s", format))
	}
}

func getConsoleSyncer() zapcore.WriteSyncer {
	return zapcore.Lock(os.Stderr)
}

func getFileSyncer(cfg *LogConfig) zapcore.WriteSyncer {
	if stat, err := os.Stat(cfg.Filename); err == nil && stat.IsDir() {
		panic("log file can't be a directory")
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	})
}

// SetupMOLogger sets up the global logger.  It is not thread safe.
func SetupMOLogger(conf *LogConfig) {
	sinks := conf.getSinks()
	level := conf.getLevel()
	cores := make([]zapcore.Core, 0, len(sinks))
	for _, sink := range sinks {
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, level))
	}
	logger := zap.New(zapcore.NewTee(cores...), conf.getOptions()...)
	setGlobalLogger(logger)
	logger.Info("MO logger init",
		zap.String("level", conf.Level),
		zap.String("format", conf.Format),
		zap.String("filename", conf.Filename))
}

var _globalLogger atomic.Value
var _skip1Logger atomic.Value
var setupOnce sync.Once

func setGlobalLogger(logger *zap.Logger) {
	_globalLogger.Store(logger)
	_skip1Logger.Store(logger.WithOptions(zap.AddCallerSkip(1)))
}

// GetGlobalLogger returns the process logger, setting up a console
// logger at info level on first use.
func GetGlobalLogger() *zap.Logger {
	setupOnce.Do(func() {
		if _globalLogger.Load() == nil {
			SetupMOLogger(&LogConfig{Level: "info", Format: "console"})
		}
	})
	return _globalLogger.Load().(*zap.Logger)
}

// GetSkip1Logger returns the process logger with an extra caller skip,
// for the package level helpers in api.go.
func GetSkip1Logger() *zap.Logger {
	GetGlobalLogger()
	return _skip1Logger.Load().(*zap.Logger)
}

// Flush syncs buffered entries.  Callers should flush before exit.
func Flush() error {
	return GetGlobalLogger().Sync()
}
