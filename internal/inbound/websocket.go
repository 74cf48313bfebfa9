package inbound

import (
	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	C "github.com/sagernet/sing-box/constant"
)

// WebSocketPath VLESS over WebSocket 的固定路径
const WebSocketPath = "/vless"

// WebSocketParams WebSocket 专属参数
type WebSocketParams struct {
	Host string // 可选的 Host 头
}

// WebSocketTLS 编译 VLESS+WebSocket+TLS 入站，TLS 块必须事先由 tlsconf 构建
func WebSocketTLS(users []User, port int, listen string, p WebSocketParams, tls *document.TLS) (*document.Inbound, error) {
	lo, err := listenOptions(listen, port)
	if err != nil {
		return nil, err
	}
	vu, err := vlessUsers(users, "")
	if err != nil {
		return nil, err
	}
	if tls == nil {
		return nil, cfgerr.Missing("tls")
	}
	if tls.Reality != nil {
		return nil, cfgerr.New(cfgerr.IncompatibleCombination, "tls.reality", "reality cannot be used with websocket transport")
	}

	transport := &document.Transport{
		Type: C.V2RayTransportTypeWebsocket,
		Path: WebSocketPath,
	}
	if p.Host != "" {
		transport.Headers = map[string]string{"Host": p.Host}
	}

	return &document.Inbound{
		Type: document.TypeVLESS,
		Tag:  TagWebSocket,
		Options: &document.VLESSInboundOptions{
			ListenOptions: lo,
			Users:         vu,
			TLS:           tls,
			Transport:     transport,
		},
	}, nil
}
