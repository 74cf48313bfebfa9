package config

import (
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
)

// LogLevel sing-box 日志级别
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

const (
	// DNSStrategyIPv4Only 单栈机器上只解析 A 记录
	DNSStrategyIPv4Only = "ipv4_only"
	// DNSServerTag 本地 DNS 服务器的 tag
	DNSServerTag = "dns-local"
	// DirectTag 默认出站
	DirectTag = "direct"
)

func (l LogLevel) valid() bool {
	switch l {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal:
		return true
	}
	return false
}

// ParseLogLevel 解析日志级别，空字符串视为 info
func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LogLevelInfo, nil
	}
	l := LogLevel(s)
	if !l.valid() {
		return "", cfgerr.Invalid("log.level", "invalid log level: %s", s)
	}
	return l, nil
}

// BuildBase 生成与入站无关的骨架：日志、DNS、默认出站、空的路由和入站列表
func BuildBase(dualStack bool, level LogLevel) (*document.Document, error) {
	if !level.valid() {
		return nil, cfgerr.Invalid("log.level", "invalid log level: %s", level)
	}

	dns := &document.DNS{
		Servers: []document.DNSServer{{Type: document.DNSTypeLocal, Tag: DNSServerTag}},
	}
	if !dualStack {
		dns.Strategy = DNSStrategyIPv4Only
	}

	return &document.Document{
		Log:       &document.Log{Level: string(level), Timestamp: true},
		DNS:       dns,
		Inbounds:  []document.Inbound{},
		Outbounds: []document.Outbound{{Type: document.TypeDirect, Tag: DirectTag}},
		Route:     &document.Route{Rules: []document.Rule{}},
	}, nil
}
