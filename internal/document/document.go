// Package document 是 sing-box 服务端配置的类型化中间表示。
// 所有编译器只产出这些结构体，序列化只在边界处做一次。
package document

import (
	"encoding/json"
	"fmt"

	C "github.com/sagernet/sing-box/constant"
)

// 入站/出站类型标记
const (
	TypeVLESS     = C.TypeVLESS
	TypeHysteria2 = C.TypeHysteria2
	TypeDirect    = C.TypeDirect
)

// DNSTypeLocal 使用系统解析器的 DNS 服务器
const DNSTypeLocal = "local"

// 路由规则 action
const (
	ActionRoute     = C.RuleActionTypeRoute
	ActionSniff     = C.RuleActionTypeSniff
	ActionHijackDNS = C.RuleActionTypeHijackDNS
	ActionResolve   = C.RuleActionTypeResolve
	ActionReject    = C.RuleActionTypeReject
)

// Document 完整的配置文档
type Document struct {
	Log       *Log       `json:"log,omitempty"`
	DNS       *DNS       `json:"dns,omitempty"`
	Inbounds  []Inbound  `json:"inbounds"`
	Outbounds []Outbound `json:"outbounds"`
	Route     *Route     `json:"route,omitempty"`
}

type Log struct {
	Level     string `json:"level"`
	Timestamp bool   `json:"timestamp"`
}

type DNS struct {
	Servers  []DNSServer `json:"servers,omitempty"`
	Strategy string      `json:"strategy,omitempty"`
}

type DNSServer struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

type Outbound struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

// Route 路由部分，规则使用 {匹配条件, action} 的新格式
type Route struct {
	Rules []Rule `json:"rules"`
	Final string `json:"final,omitempty"`
}

type Rule struct {
	Inbound  []string `json:"inbound,omitempty"`
	Protocol []string `json:"protocol,omitempty"`
	Action   string   `json:"action"`
	Outbound string   `json:"outbound,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
	Timeout  string   `json:"timeout,omitempty"`
}

// MarshalJSON 保证 inbounds/outbounds 键总是以数组形式出现
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	p := plain(d)
	if p.Inbounds == nil {
		p.Inbounds = []Inbound{}
	}
	if p.Outbounds == nil {
		p.Outbounds = []Outbound{}
	}
	if p.Route != nil && p.Route.Rules == nil {
		r := *p.Route
		r.Rules = []Rule{}
		p.Route = &r
	}
	return json.Marshal(p)
}

// Clone 返回一份独立的副本，修改副本不会影响原文档
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Inbounds:  append([]Inbound{}, d.Inbounds...),
		Outbounds: append([]Outbound{}, d.Outbounds...),
	}
	if d.Log != nil {
		l := *d.Log
		out.Log = &l
	}
	if d.DNS != nil {
		dns := *d.DNS
		dns.Servers = append([]DNSServer(nil), d.DNS.Servers...)
		out.DNS = &dns
	}
	if d.Route != nil {
		r := *d.Route
		r.Rules = append([]Rule{}, d.Route.Rules...)
		out.Route = &r
	}
	return out
}

// Tags 返回所有入站的 tag（保持顺序）
func (d *Document) Tags() []string {
	tags := make([]string, 0, len(d.Inbounds))
	for _, in := range d.Inbounds {
		tags = append(tags, in.Tag)
	}
	return tags
}

// Marshal 序列化为带缩进的 JSON，sing-box 直接读取该文件
func Marshal(d *Document) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("document is nil")
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return append(data, '\n'), nil
}
