package internal

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct {
	*zap.SugaredLogger
}

var (
	Logger *logger
	once   sync.Once
	mu     sync.Mutex
)

// GetLogger returns the process logger, a development logger until
// ConfigureLogger is called.
func GetLogger() *logger {
	once.Do(func() {
		if Logger == nil {
			Logger = initLogger(zapcore.DebugLevel, true)
		}
	})
	mu.Lock()
	defer mu.Unlock()
	return Logger
}

// ConfigureLogger replaces the process logger. level is a zap level name.
func ConfigureLogger(level string, development bool) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return err
	}
	l := initLogger(lvl, development)
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	if Logger != nil {
		_ = Logger.Sync()
	}
	Logger = l
	return nil
}

func initLogger(level zapcore.Level, development bool) *logger {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	prod, err := cfg.Build()
	if err != nil {
		prod = zap.NewNop()
	}
	return &logger{
		SugaredLogger: prod.Sugar(),
	}
}
