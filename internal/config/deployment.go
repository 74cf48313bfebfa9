package config

import (
	"github.com/kyson-dev/sing-deploy/internal/inbound"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
)

// Deployment 一次部署的全部输入，由 settings 从 deployment.yaml 转换而来
type Deployment struct {
	DualStack   bool
	LogLevel    LogLevel
	Listen      string
	Users       []inbound.User
	Certificate Certificate
	Protocols   []Protocol
}

// Certificate 所有 TLS 入站共用的证书设置
type Certificate struct {
	Mode            protocol.CertMode
	ServerName      string
	ALPN            []string
	CertificatePath string
	KeyPath         string
	Email           string
	DataDirectory   string
	DNSProvider     string
	DNSToken        string
}

// Protocol 一个要启用的入站
type Protocol struct {
	Selection protocol.Selection
	Port      int
	Tag       string // 可选，覆盖编译器的默认 tag
	Params    inbound.Params
}

// DefaultDeployment 返回只有 Reality 入站的最小部署（凭据需另行填写）
func DefaultDeployment() Deployment {
	return Deployment{
		LogLevel: LogLevelInfo,
		Certificate: Certificate{
			Mode: protocol.CertModeACMEHTTP01,
		},
		Protocols: []Protocol{
			{
				Selection: protocol.Selection{
					Transport: protocol.TransportTCP,
					Security:  protocol.SecurityReality,
					Flow:      protocol.VisionFlow,
				},
				Port: 443,
			},
		},
	}
}
