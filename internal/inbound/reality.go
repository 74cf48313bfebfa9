package inbound

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
)

// DefaultMaxTimeDifference Reality 防重放的时间窗口
const DefaultMaxTimeDifference = "1m"

// RealityParams Reality 专属参数
type RealityParams struct {
	ServerName        string   // 伪装目标，同时作为握手服务器
	HandshakeServer   string   // 为空时使用 ServerName
	HandshakePort     int      // 为空时 443
	PrivateKey        string   // x25519 私钥 (base64 raw url)
	ShortIDs          []string // 至少一个
	MaxTimeDifference string   // 为空时 DefaultMaxTimeDifference
}

// Reality 编译 VLESS+Reality 入站：传输层固定为 tcp，每个用户都带 vision flow，
// Reality 自带类 TLS 层，不使用证书。
func Reality(users []User, port int, listen string, p RealityParams) (*document.Inbound, error) {
	if err := protocol.Validate(protocol.TransportTCP, protocol.SecurityReality, protocol.VisionFlow); err != nil {
		return nil, err
	}
	lo, err := listenOptions(listen, port)
	if err != nil {
		return nil, err
	}
	vu, err := vlessUsers(users, protocol.VisionFlow)
	if err != nil {
		return nil, err
	}
	reality, err := realityBlock(p)
	if err != nil {
		return nil, err
	}

	return &document.Inbound{
		Type: document.TypeVLESS,
		Tag:  TagReality,
		Options: &document.VLESSInboundOptions{
			ListenOptions: lo,
			Users:         vu,
			TLS: &document.TLS{
				Enabled:    true,
				ServerName: p.ServerName,
				Reality:    reality,
			},
		},
	}, nil
}

func realityBlock(p RealityParams) (*document.Reality, error) {
	if p.ServerName == "" {
		return nil, cfgerr.Missing("tls.server_name")
	}
	if p.PrivateKey == "" {
		return nil, cfgerr.Missing("tls.reality.private_key")
	}
	if len(p.ShortIDs) == 0 {
		return nil, cfgerr.Missing("tls.reality.short_id")
	}
	for i, sid := range p.ShortIDs {
		if err := checkShortID(sid); err != nil {
			return nil, cfgerr.Wrap(cfgerr.InvalidValue, fmt.Sprintf("tls.reality.short_id.%d", i), err, "invalid short id %q", sid)
		}
	}

	server := p.HandshakeServer
	if server == "" {
		server = p.ServerName
	}
	hsPort := p.HandshakePort
	if hsPort == 0 {
		hsPort = 443
	}
	if hsPort < 1 || hsPort > 65535 {
		return nil, cfgerr.Invalid("tls.reality.handshake.server_port", "port %d out of range 1-65535", hsPort)
	}

	maxDiff := p.MaxTimeDifference
	if maxDiff == "" {
		maxDiff = DefaultMaxTimeDifference
	}
	if _, err := time.ParseDuration(maxDiff); err != nil {
		return nil, cfgerr.Wrap(cfgerr.InvalidValue, "tls.reality.max_time_difference", err, "invalid duration %q", maxDiff)
	}

	return &document.Reality{
		Enabled: true,
		Handshake: document.RealityHandshake{
			Server:     server,
			ServerPort: uint16(hsPort),
		},
		PrivateKey:        p.PrivateKey,
		ShortID:           append([]string(nil), p.ShortIDs...),
		MaxTimeDifference: maxDiff,
	}, nil
}

// checkShortID short id 为 0-16 位偶数长度的十六进制
func checkShortID(sid string) error {
	if len(sid) > 16 || len(sid)%2 != 0 {
		return fmt.Errorf("length %d is not an even number up to 16", len(sid))
	}
	_, err := hex.DecodeString(sid)
	return err
}
