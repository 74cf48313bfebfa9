// Package tlsconf 构建入站的 TLS 块，支持三种证书模式：手动证书、ACME HTTP-01、ACME DNS-01。
package tlsconf

import (
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
)

const (
	// DefaultDataDirectory sing-box 保存 ACME 账户和证书的目录
	DefaultDataDirectory = "/var/lib/sing-box/acme"
	// DefaultProvider 证书颁发机构
	DefaultProvider = "letsencrypt"
	// DefaultDNSProvider DNS-01 默认使用的 DNS 服务商
	DefaultDNSProvider = "cloudflare"
)

// supportedDNSProviders 只使用 api_token 鉴权的 DNS-01 服务商
var supportedDNSProviders = map[string]bool{
	"cloudflare": true,
}

// Params TLS 块的输入
type Params struct {
	ServerName string
	ALPN       []string
	Mode       protocol.CertMode

	// manual
	CertificatePath string
	KeyPath         string

	// acme
	Email         string
	DataDirectory string // 为空使用 DefaultDataDirectory
	DNSProvider   string // 为空使用 DefaultDNSProvider
	DNSToken      string
}

// Build 根据证书模式生成 TLS 块
func Build(p Params) (*document.TLS, error) {
	block := &document.TLS{
		Enabled:    true,
		ServerName: p.ServerName,
		ALPN:       append([]string(nil), p.ALPN...),
	}

	switch p.Mode {
	case protocol.CertModeManual:
		if p.CertificatePath == "" {
			return nil, cfgerr.Missing("tls.certificate_path")
		}
		if p.KeyPath == "" {
			return nil, cfgerr.Missing("tls.key_path")
		}
		block.CertificatePath = p.CertificatePath
		block.KeyPath = p.KeyPath
		return block, nil

	case protocol.CertModeACMEHTTP01:
		acme, err := baseACME(p)
		if err != nil {
			return nil, err
		}
		block.ACME = acme
		return block, nil

	case protocol.CertModeACMEDNS01:
		acme, err := baseACME(p)
		if err != nil {
			return nil, err
		}
		if p.DNSToken == "" {
			return nil, cfgerr.Missing("tls.acme.dns01_challenge.api_token")
		}
		provider := strings.ToLower(strings.TrimSpace(p.DNSProvider))
		if provider == "" {
			provider = DefaultDNSProvider
		}
		if !supportedDNSProviders[provider] {
			return nil, cfgerr.Unsupported("tls.acme.dns01_challenge.provider", p.DNSProvider)
		}
		acme.DisableHTTPChallenge = true
		acme.DNS01Challenge = &document.DNS01Challenge{
			Provider: provider,
			APIToken: p.DNSToken,
		}
		block.ACME = acme
		return block, nil

	default:
		return nil, cfgerr.Unsupported("cert_mode", string(p.Mode))
	}
}

// BuildWithModeName 先解析模式名（包括旧别名）再构建
func BuildWithModeName(mode string, p Params) (*document.TLS, error) {
	m, err := protocol.ParseCertMode(mode)
	if err != nil {
		return nil, err
	}
	p.Mode = m
	return Build(p)
}

// baseACME HTTP-01 与 DNS-01 共用的部分，TLS-ALPN 挑战始终关闭
func baseACME(p Params) (*document.ACME, error) {
	if p.ServerName == "" {
		return nil, cfgerr.Missing("tls.server_name")
	}
	dataDir := p.DataDirectory
	if dataDir == "" {
		dataDir = DefaultDataDirectory
	}
	return &document.ACME{
		Domain:                  []string{p.ServerName},
		DataDirectory:           dataDir,
		Email:                   p.Email,
		Provider:                DefaultProvider,
		DisableTLSALPNChallenge: true,
	}, nil
}
