package logger

import (
	"github.com/sagernet/sing-box/log"
)

// PlatformWriter 实现 sing-box 的 log.PlatformWriter 接口
// 进程内试启动引擎时，把 sing-box 的日志转到 slog
type PlatformWriter struct{}

func NewPlatformWriter() log.PlatformWriter {
	return &PlatformWriter{}
}

func (p *PlatformWriter) DisableColors() bool {
	return true
}

func (p *PlatformWriter) WriteMessage(level log.Level, message string) {
	switch level {
	case log.LevelTrace, log.LevelDebug:
		get().Debug(message, "source", "sing-box")
	case log.LevelInfo:
		get().Info(message, "source", "sing-box")
	case log.LevelWarn:
		get().Warn(message, "source", "sing-box")
	case log.LevelError, log.LevelFatal, log.LevelPanic:
		get().Error(message, "source", "sing-box")
	default:
		get().Info(message, "source", "sing-box")
	}
}

var _ log.PlatformWriter = (*PlatformWriter)(nil)
