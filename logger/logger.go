package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"dataquality-service/service/config"

	slogmulti "github.com/samber/slog-multi"
)

// InitLogger 初始化全局日志记录器
// JSON 格式输出到 stdout，开启 console 时同时以文本格式输出到 stderr
func InitLogger(cfg config.LogConfig) *slog.Logger {
	logger := NewLogger(os.Stdout, consoleWriter(cfg), ParseLevel(cfg.Level))
	slog.SetDefault(logger)
	return logger
}

// NewLogger 创建日志记录器，console 为空时只输出 JSON
func NewLogger(out, console io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	jsonHandler := slog.NewJSONHandler(out, opts)
	if console == nil {
		return slog.New(jsonHandler)
	}
	return slog.New(slogmulti.Fanout(jsonHandler, slog.NewTextHandler(console, opts)))
}

// ParseLevel 解析日志级别，无法识别时为 INFO
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func consoleWriter(cfg config.LogConfig) io.Writer {
	if cfg.Console {
		return os.Stderr
	}
	return nil
}
