package inbound

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
)

// Params 各编译器专属参数的集合，Compile 只读取与选择匹配的那一项
type Params struct {
	Reality   RealityParams
	WebSocket WebSocketParams
	Hysteria2 Hysteria2Params
}

// Compile 先做兼容性校验，再分派到对应的编译器
func Compile(sel protocol.Selection, users []User, port int, listen string, p Params, tls *document.TLS) (*document.Inbound, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	switch {
	case sel.Transport == protocol.TransportTCP && sel.Security == protocol.SecurityReality:
		return Reality(users, port, listen, p.Reality)
	case sel.Transport == protocol.TransportWebSocket && sel.Security == protocol.SecurityTLS:
		return WebSocketTLS(users, port, listen, p.WebSocket, tls)
	case sel.Transport == protocol.TransportQUIC && sel.Security == protocol.SecurityTLS:
		return Hysteria2(users, port, listen, p.Hysteria2, tls)
	default:
		return nil, cfgerr.New(cfgerr.UnsupportedMode, "selection",
			"no compiler for %s", describe(sel))
	}
}

// NeedsCertificate 该选择是否需要 tlsconf 构建的证书块
func NeedsCertificate(sel protocol.Selection) bool {
	return sel.Security == protocol.SecurityTLS
}

func describe(sel protocol.Selection) string {
	return fmt.Sprintf("%s+%s", sel.Transport, sel.Security)
}
