package document

import (
	"encoding/json"
	"fmt"
)

// Inbound 一个监听器。Options 只能是 *VLESSInboundOptions 或 *Hysteria2InboundOptions，
// 序列化时与 type/tag 平铺在同一个对象里。
type Inbound struct {
	Type    string
	Tag     string
	Options any
}

type inboundHeader struct {
	Type string `json:"type"`
	Tag  string `json:"tag"`
}

func (i Inbound) MarshalJSON() ([]byte, error) {
	header := inboundHeader{Type: i.Type, Tag: i.Tag}
	switch o := i.Options.(type) {
	case *VLESSInboundOptions:
		return json.Marshal(struct {
			inboundHeader
			*VLESSInboundOptions
		}{header, o})
	case *Hysteria2InboundOptions:
		return json.Marshal(struct {
			inboundHeader
			*Hysteria2InboundOptions
		}{header, o})
	case nil:
		return json.Marshal(header)
	default:
		return nil, fmt.Errorf("inbound %s: unsupported options type %T", i.Tag, i.Options)
	}
}

// VLESS 返回 VLESS 选项，类型不匹配时 ok=false
func (i Inbound) VLESS() (*VLESSInboundOptions, bool) {
	o, ok := i.Options.(*VLESSInboundOptions)
	return o, ok && o != nil
}

// Hysteria2 返回 Hysteria2 选项，类型不匹配时 ok=false
func (i Inbound) Hysteria2() (*Hysteria2InboundOptions, bool) {
	o, ok := i.Options.(*Hysteria2InboundOptions)
	return o, ok && o != nil
}

// ListenPort 返回监听端口（未知类型返回 0）
func (i Inbound) ListenPort() uint16 {
	switch o := i.Options.(type) {
	case *VLESSInboundOptions:
		return o.ListenPort
	case *Hysteria2InboundOptions:
		return o.ListenPort
	}
	return 0
}

type ListenOptions struct {
	Listen     string `json:"listen"`
	ListenPort uint16 `json:"listen_port"`
}

type VLESSInboundOptions struct {
	ListenOptions
	Users     []VLESSUser `json:"users"`
	TLS       *TLS        `json:"tls,omitempty"`
	Transport *Transport  `json:"transport,omitempty"`
}

type VLESSUser struct {
	Name string `json:"name,omitempty"`
	UUID string `json:"uuid"`
	Flow string `json:"flow,omitempty"`
}

type Hysteria2InboundOptions struct {
	ListenOptions
	UpMbps     int             `json:"up_mbps,omitempty"`
	DownMbps   int             `json:"down_mbps,omitempty"`
	Users      []Hysteria2User `json:"users"`
	TLS        *TLS            `json:"tls,omitempty"`
	Masquerade string          `json:"masquerade,omitempty"`
	Obfs       *Hysteria2Obfs  `json:"obfs,omitempty"`
}

type Hysteria2User struct {
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type Hysteria2Obfs struct {
	Type     string `json:"type"`
	Password string `json:"password"`
}

// Transport V2Ray 传输层配置，只有 ws/grpc/http 会出现
type Transport struct {
	Type        string            `json:"type"`
	Path        string            `json:"path,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}
