package config

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/inbound"
	"github.com/kyson-dev/sing-deploy/internal/tlsconf"
)

// BaseModule 日志、DNS、默认出站
type BaseModule struct {
	DualStack bool
	LogLevel  LogLevel
}

func (m *BaseModule) Name() string {
	return "base"
}

func (m *BaseModule) Apply(doc *document.Document, ctx *BuildContext) error {
	level := m.LogLevel
	if level == "" {
		level = LogLevelInfo
	}
	base, err := BuildBase(m.DualStack, level)
	if err != nil {
		return err
	}
	*doc = *base
	return nil
}

// InboundModule 编译一个入站，放进 BuildContext 等待组装
type InboundModule struct {
	Protocol Protocol
}

func (m *InboundModule) Name() string {
	return fmt.Sprintf("inbound(%s+%s:%d)", m.Protocol.Selection.Transport, m.Protocol.Selection.Security, m.Protocol.Port)
}

func (m *InboundModule) Apply(doc *document.Document, ctx *BuildContext) error {
	d := ctx.Deployment
	sel := m.Protocol.Selection

	// 先做兼容性校验，失败时不构建任何东西
	if err := sel.Validate(); err != nil {
		return err
	}

	var tls *document.TLS
	if inbound.NeedsCertificate(sel) {
		mode := sel.CertMode
		if mode == "" {
			mode = d.Certificate.Mode
		}
		if mode == "" {
			return cfgerr.Missing("cert.mode")
		}
		block, err := tlsconf.Build(tlsconf.Params{
			ServerName:      d.Certificate.ServerName,
			ALPN:            d.Certificate.ALPN,
			Mode:            mode,
			CertificatePath: d.Certificate.CertificatePath,
			KeyPath:         d.Certificate.KeyPath,
			Email:           d.Certificate.Email,
			DataDirectory:   d.Certificate.DataDirectory,
			DNSProvider:     d.Certificate.DNSProvider,
			DNSToken:        d.Certificate.DNSToken,
		})
		if err != nil {
			return err
		}
		tls = block
	}

	in, err := inbound.Compile(sel, d.Users, m.Protocol.Port, d.Listen, m.Protocol.Params, tls)
	if err != nil {
		return err
	}

	base := in.Tag
	if m.Protocol.Tag != "" {
		base = m.Protocol.Tag
	}
	in.Tag = MakeUniqueTag(base, ctx.usedTags)
	ctx.Inbounds = append(ctx.Inbounds, in)
	return nil
}

// AssembleModule 把收集到的入站合并进文档并生成路由规则
type AssembleModule struct{}

func (m *AssembleModule) Name() string {
	return "assemble"
}

func (m *AssembleModule) Apply(doc *document.Document, ctx *BuildContext) error {
	assembled, err := Assemble(doc, ctx.Inbounds...)
	if err != nil {
		return err
	}
	*doc = *assembled
	return nil
}
