// Package inbound 把协议选择编译为单个入站文档：VLESS+Reality、VLESS+WebSocket+TLS、Hysteria2+TLS。
package inbound

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
)

// 固定的入站 tag
const (
	TagReality   = "in-reality"
	TagWebSocket = "in-ws"
	TagHysteria2 = "in-hysteria2"
)

// DefaultListen 未指定监听地址时监听全部地址（双栈）
const DefaultListen = "::"

// User 一条用户凭据。VLESS 使用 UUID，Hysteria2 使用 Password。
type User struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	UUID     string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

func checkPort(port int) (uint16, error) {
	if port == 0 {
		return 0, cfgerr.Missing("listen_port")
	}
	if port < 1 || port > 65535 {
		return 0, cfgerr.Invalid("listen_port", "port %d out of range 1-65535", port)
	}
	return uint16(port), nil
}

func listenOptions(listen string, port int) (document.ListenOptions, error) {
	p, err := checkPort(port)
	if err != nil {
		return document.ListenOptions{}, err
	}
	if listen == "" {
		listen = DefaultListen
	}
	return document.ListenOptions{Listen: listen, ListenPort: p}, nil
}

// vlessUsers 校验 UUID 并附加 flow
func vlessUsers(users []User, flow string) ([]document.VLESSUser, error) {
	if len(users) == 0 {
		return nil, cfgerr.Missing("users")
	}
	out := make([]document.VLESSUser, 0, len(users))
	for i, u := range users {
		field := fmt.Sprintf("users.%d.uuid", i)
		if u.UUID == "" {
			return nil, cfgerr.Missing(field)
		}
		id, err := uuid.Parse(u.UUID)
		if err != nil {
			return nil, cfgerr.Wrap(cfgerr.InvalidValue, field, err, "invalid uuid %q", u.UUID)
		}
		out = append(out, document.VLESSUser{
			Name: userName(u.Name, i),
			UUID: id.String(),
			Flow: flow,
		})
	}
	return out, nil
}

func userName(name string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("user-%d", i+1)
}
