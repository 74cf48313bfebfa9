package inbound

import (
	"fmt"
	"net/url"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
)

// Hysteria2Params Hysteria2 专属参数
type Hysteria2Params struct {
	UpMbps       int
	DownMbps     int
	Masquerade   string // 可选，伪装站点 URL
	ObfsPassword string // 可选，salamander 混淆密码
}

// Hysteria2 编译 Hysteria2+TLS 入站，用户凭据是密码而不是 UUID
func Hysteria2(users []User, port int, listen string, p Hysteria2Params, tls *document.TLS) (*document.Inbound, error) {
	lo, err := listenOptions(listen, port)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, cfgerr.Missing("users")
	}
	hu := make([]document.Hysteria2User, 0, len(users))
	for i, u := range users {
		if u.Password == "" {
			return nil, cfgerr.Missing(fmt.Sprintf("users.%d.password", i))
		}
		hu = append(hu, document.Hysteria2User{Name: userName(u.Name, i), Password: u.Password})
	}
	if tls == nil {
		return nil, cfgerr.Missing("tls")
	}
	if tls.Reality != nil {
		return nil, cfgerr.New(cfgerr.IncompatibleCombination, "tls.reality", "reality cannot be used with quic transport")
	}
	if p.UpMbps < 0 {
		return nil, cfgerr.Invalid("up_mbps", "bandwidth %d must not be negative", p.UpMbps)
	}
	if p.DownMbps < 0 {
		return nil, cfgerr.Invalid("down_mbps", "bandwidth %d must not be negative", p.DownMbps)
	}
	if p.Masquerade != "" {
		u, err := url.Parse(p.Masquerade)
		if err != nil || u.Scheme == "" || (u.Host == "" && u.Scheme != "file") {
			return nil, cfgerr.Invalid("masquerade", "invalid masquerade url %q", p.Masquerade)
		}
	}

	opts := &document.Hysteria2InboundOptions{
		ListenOptions: lo,
		UpMbps:        p.UpMbps,
		DownMbps:      p.DownMbps,
		Users:         hu,
		TLS:           tls,
		Masquerade:    p.Masquerade,
	}
	if p.ObfsPassword != "" {
		opts.Obfs = &document.Hysteria2Obfs{Type: "salamander", Password: p.ObfsPassword}
	}

	return &document.Inbound{
		Type:    document.TypeHysteria2,
		Tag:     TagHysteria2,
		Options: opts,
	}, nil
}
