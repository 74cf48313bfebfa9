// Package protocol 定义协议选择的枚举以及传输层/安全层/flow 兼容矩阵。
package protocol

import (
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
)

// Transport 传输层（连接的承载协议）
type Transport string

const (
	TransportTCP       Transport = "tcp"
	TransportWebSocket Transport = "websocket"
	TransportGRPC      Transport = "grpc"
	TransportHTTP      Transport = "http"
	TransportQUIC      Transport = "quic"
)

// Security 安全层
type Security string

const (
	SecurityNone    Security = "none"
	SecurityTLS     Security = "tls"
	SecurityReality Security = "reality"
)

// CertMode 证书获取模式
type CertMode string

const (
	CertModeManual     CertMode = "manual"      // 手动指定证书/私钥文件
	CertModeACMEHTTP01 CertMode = "acme-http01" // ACME HTTP-01 挑战
	CertModeACMEDNS01  CertMode = "acme-dns01"  // ACME DNS-01 挑战（需要 DNS 服务商 token）
)

// legacyCertModeACME 旧版本安装脚本使用的模式名，等价于 acme-http01
const legacyCertModeACME = "acme"

// VisionFlow 仅在 tcp + reality 下合法的 flow 标记
const VisionFlow = "xtls-rprx-vision"

// ParseTransport 解析传输层字符串
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp", "":
		return TransportTCP, nil
	case "websocket", "ws":
		return TransportWebSocket, nil
	case "grpc":
		return TransportGRPC, nil
	case "http", "h2":
		return TransportHTTP, nil
	case "quic":
		return TransportQUIC, nil
	default:
		return "", cfgerr.Unsupported("transport", s)
	}
}

// ParseSecurity 解析安全层字符串
func ParseSecurity(s string) (Security, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return SecurityNone, nil
	case "tls":
		return SecurityTLS, nil
	case "reality":
		return SecurityReality, nil
	default:
		return "", cfgerr.Unsupported("security", s)
	}
}

// ParseCertMode 解析证书模式，旧别名 "acme" 归一化为 acme-http01
func ParseCertMode(s string) (CertMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return CertModeManual, nil
	case "acme-http01", legacyCertModeACME:
		return CertModeACMEHTTP01, nil
	case "acme-dns01":
		return CertModeACMEDNS01, nil
	default:
		return "", cfgerr.Unsupported("cert_mode", s)
	}
}

func (t Transport) valid() bool {
	switch t {
	case TransportTCP, TransportWebSocket, TransportGRPC, TransportHTTP, TransportQUIC:
		return true
	}
	return false
}

func (s Security) valid() bool {
	switch s {
	case SecurityNone, SecurityTLS, SecurityReality:
		return true
	}
	return false
}

// Transports 返回全部传输层枚举值
func Transports() []Transport {
	return []Transport{TransportTCP, TransportWebSocket, TransportGRPC, TransportHTTP, TransportQUIC}
}

// Securities 返回全部安全层枚举值
func Securities() []Security {
	return []Security{SecurityNone, SecurityTLS, SecurityReality}
}
