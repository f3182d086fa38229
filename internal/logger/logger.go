// Package logger builds the zap loggers used by the pagecache commands.
// Library packages never call it; they take a *zap.Logger in their
// Options and fall back to zap.NewNop.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultService is the service field used when Config.Service is empty.
const DefaultService = "pagecache"

// Config describes one logger. The zero value logs info and above as JSON
// to stderr.
type Config struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
	// OutputFile is "stderr", "stdout" or a path opened for appending.
	OutputFile string `yaml:"output_file"`
	// Service is attached to every entry as the "service" field.
	Service string `yaml:"service"`
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	out, err := sink(cfg.OutputFile)
	if err != nil {
		return nil, err
	}
	service := cfg.Service
	if service == "" {
		service = DefaultService
	}

	core := zapcore.NewCore(encoder(cfg.Format), out, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.Fields(zap.String("service", service))), nil
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if strings.EqualFold(format, "console") {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func sink(path string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(path) {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", path, err)
	}
	return zapcore.AddSync(f), nil
}
