package netutil

import (
	"fmt"
	"net"
	"strconv"
)

// GetFreePort 请求内核分配一个空闲 TCP 端口
func GetFreePort() (int, error) {
	// 监听端口 0，内核会自动分配一个空闲端口
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// CheckAvailable 尝试在本机绑定 port，network 为 "tcp" 或 "udp"。
// 返回 nil 表示端口当前空闲；探测完立即释放。
func CheckAvailable(host string, port int, network string) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	switch network {
	case "tcp":
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("tcp port %d unavailable: %w", port, err)
		}
		return l.Close()
	case "udp":
		pc, err := net.ListenPacket("udp", addr)
		if err != nil {
			return fmt.Errorf("udp port %d unavailable: %w", port, err)
		}
		return pc.Close()
	default:
		return fmt.Errorf("unknown network: %s", network)
	}
}
