package settings

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/config"
	"github.com/kyson-dev/sing-deploy/internal/inbound"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
)

// ToDeployment 解析枚举字符串并做兼容性校验，任何一个协议不合法都直接返回
func (f *File) ToDeployment() (*config.Deployment, error) {
	level, err := config.ParseLogLevel(f.LogLevel)
	if err != nil {
		return nil, err
	}

	d := &config.Deployment{
		DualStack: f.DualStack,
		LogLevel:  level,
		Listen:    f.Listen,
		Certificate: config.Certificate{
			ServerName:      f.Cert.ServerName,
			ALPN:            f.Cert.ALPN,
			CertificatePath: f.Cert.CertificatePath,
			KeyPath:         f.Cert.KeyPath,
			Email:           f.Cert.Email,
			DataDirectory:   f.Cert.DataDirectory,
			DNSProvider:     f.Cert.DNSProvider,
			DNSToken:        f.Cert.DNSToken,
		},
	}
	if f.Cert.Mode != "" {
		mode, err := protocol.ParseCertMode(f.Cert.Mode)
		if err != nil {
			return nil, err
		}
		d.Certificate.Mode = mode
	}

	for _, u := range f.Users {
		d.Users = append(d.Users, inbound.User{Name: u.Name, UUID: u.UUID, Password: u.Password})
	}

	if len(f.Protocols) == 0 {
		return nil, cfgerr.Missing("protocols")
	}
	for i, p := range f.Protocols {
		proto, err := p.toProtocol()
		if err != nil {
			return nil, fmt.Errorf("protocols[%d]: %w", i, err)
		}
		d.Protocols = append(d.Protocols, proto)
	}
	return d, nil
}

func (p Protocol) toProtocol() (config.Protocol, error) {
	transport, err := protocol.ParseTransport(p.Transport)
	if err != nil {
		return config.Protocol{}, err
	}
	security, err := protocol.ParseSecurity(p.Security)
	if err != nil {
		return config.Protocol{}, err
	}
	sel := protocol.Selection{
		Transport: transport,
		Security:  security,
		Flow:      p.Flow,
	}
	if p.CertMode != "" {
		mode, err := protocol.ParseCertMode(p.CertMode)
		if err != nil {
			return config.Protocol{}, err
		}
		sel.CertMode = mode
	}
	// 选择时立即检查组合，不等到编译阶段
	if err := sel.Validate(); err != nil {
		return config.Protocol{}, err
	}

	out := config.Protocol{
		Selection: sel,
		Port:      p.Port,
		Tag:       p.Tag,
	}
	if r := p.Reality; r != nil {
		out.Params.Reality = inbound.RealityParams{
			ServerName:        r.ServerName,
			HandshakeServer:   r.HandshakeServer,
			HandshakePort:     r.HandshakePort,
			PrivateKey:        r.PrivateKey,
			ShortIDs:          r.ShortIDs,
			MaxTimeDifference: r.MaxTimeDifference,
		}
	}
	if ws := p.WebSocket; ws != nil {
		out.Params.WebSocket = inbound.WebSocketParams{Host: ws.Host}
	}
	if h := p.Hysteria2; h != nil {
		out.Params.Hysteria2 = inbound.Hysteria2Params{
			UpMbps:       h.UpMbps,
			DownMbps:     h.DownMbps,
			Masquerade:   h.Masquerade,
			ObfsPassword: h.ObfsPassword,
		}
	}
	return out, nil
}
