// Package logger 全局 slog 日志，CLI 启动时调用一次 Setup。
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Config 日志配置
type Config struct {
	Debug    bool   // 输出 debug 级别
	FilePath string // 为空时输出到 stderr
}

var (
	instance *slog.Logger
	level    = new(slog.LevelVar)
	once     sync.Once
)

// Setup 初始化全局 logger，只有第一次调用生效
func Setup(cfg Config) {
	once.Do(func() {
		if cfg.Debug {
			level.Set(slog.LevelDebug)
		} else {
			level.Set(slog.LevelInfo)
		}

		var w io.Writer = os.Stderr
		if cfg.FilePath != "" {
			if f, err := openLogFile(cfg.FilePath); err == nil {
				w = f
			}
		}

		handler := slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource: cfg.Debug,
			Level:     level,
		})
		instance = slog.New(handler)
		slog.SetDefault(instance)
	})
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func get() *slog.Logger {
	if instance == nil {
		Setup(Config{})
	}
	return instance
}

// IsDebug 当前是否输出 debug 日志
func IsDebug() bool {
	return level.Level() <= slog.LevelDebug
}

func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }
func Debug(msg string, args ...any) { get().Debug(msg, args...) }
