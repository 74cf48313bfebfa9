// Package settings 读写 deployment.yaml（部署参数），并转换为 config.Deployment。
package settings

// File deployment.yaml 的结构
type File struct {
	LogLevel     string     `mapstructure:"log_level" yaml:"log_level,omitempty"`
	DualStack    bool       `mapstructure:"dual_stack" yaml:"dual_stack"`
	Listen       string     `mapstructure:"listen" yaml:"listen,omitempty"`
	EngineBinary string     `mapstructure:"engine_binary" yaml:"engine_binary,omitempty"`
	Output       string     `mapstructure:"output" yaml:"output,omitempty"`
	Users        []User     `mapstructure:"users" yaml:"users"`
	Cert         Cert       `mapstructure:"cert" yaml:"cert"`
	Protocols    []Protocol `mapstructure:"protocols" yaml:"protocols"`
}

type User struct {
	Name     string `mapstructure:"name" yaml:"name,omitempty"`
	UUID     string `mapstructure:"uuid" yaml:"uuid,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// Cert 证书设置，所有 TLS 入站共用
type Cert struct {
	Mode            string   `mapstructure:"mode" yaml:"mode,omitempty"`
	ServerName      string   `mapstructure:"server_name" yaml:"server_name,omitempty"`
	ALPN            []string `mapstructure:"alpn" yaml:"alpn,omitempty"`
	CertificatePath string   `mapstructure:"certificate_path" yaml:"certificate_path,omitempty"`
	KeyPath         string   `mapstructure:"key_path" yaml:"key_path,omitempty"`
	Email           string   `mapstructure:"email" yaml:"email,omitempty"`
	DataDirectory   string   `mapstructure:"data_directory" yaml:"data_directory,omitempty"`
	DNSProvider     string   `mapstructure:"dns_provider" yaml:"dns_provider,omitempty"`
	DNSToken        string   `mapstructure:"dns_token" yaml:"dns_token,omitempty"`
}

type Protocol struct {
	Transport string     `mapstructure:"transport" yaml:"transport"`
	Security  string     `mapstructure:"security" yaml:"security"`
	Flow      string     `mapstructure:"flow" yaml:"flow,omitempty"`
	CertMode  string     `mapstructure:"cert_mode" yaml:"cert_mode,omitempty"`
	Port      int        `mapstructure:"port" yaml:"port"`
	Tag       string     `mapstructure:"tag" yaml:"tag,omitempty"`
	Reality   *Reality   `mapstructure:"reality" yaml:"reality,omitempty"`
	WebSocket *WebSocket `mapstructure:"websocket" yaml:"websocket,omitempty"`
	Hysteria2 *Hysteria2 `mapstructure:"hysteria2" yaml:"hysteria2,omitempty"`
}

type Reality struct {
	ServerName        string   `mapstructure:"server_name" yaml:"server_name"`
	HandshakeServer   string   `mapstructure:"handshake_server" yaml:"handshake_server,omitempty"`
	HandshakePort     int      `mapstructure:"handshake_port" yaml:"handshake_port,omitempty"`
	PrivateKey        string   `mapstructure:"private_key" yaml:"private_key,omitempty"`
	PublicKey         string   `mapstructure:"public_key" yaml:"public_key,omitempty"` // 只给客户端参考，不进入配置
	ShortIDs          []string `mapstructure:"short_ids" yaml:"short_ids,omitempty"`
	MaxTimeDifference string   `mapstructure:"max_time_difference" yaml:"max_time_difference,omitempty"`
}

type WebSocket struct {
	Host string `mapstructure:"host" yaml:"host,omitempty"`
}

type Hysteria2 struct {
	UpMbps       int    `mapstructure:"up_mbps" yaml:"up_mbps,omitempty"`
	DownMbps     int    `mapstructure:"down_mbps" yaml:"down_mbps,omitempty"`
	Masquerade   string `mapstructure:"masquerade" yaml:"masquerade,omitempty"`
	ObfsPassword string `mapstructure:"obfs_password" yaml:"obfs_password,omitempty"`
}

// Example 一份三协议的示例，凭据留空由 generate --fill-secrets 填写
func Example() *File {
	return &File{
		LogLevel: "info",
		Users:    []User{{Name: "default"}},
		Cert: Cert{
			Mode:       "acme-http01",
			ServerName: "proxy.example.com",
			ALPN:       []string{"h2", "http/1.1"},
			Email:      "admin@example.com",
		},
		Protocols: []Protocol{
			{
				Transport: "tcp",
				Security:  "reality",
				Flow:      "xtls-rprx-vision",
				Port:      443,
				Reality:   &Reality{ServerName: "www.microsoft.com"},
			},
			{
				Transport: "websocket",
				Security:  "tls",
				Port:      8443,
			},
			{
				Transport: "quic",
				Security:  "tls",
				Port:      8444,
				Hysteria2: &Hysteria2{UpMbps: 100, DownMbps: 100},
			},
		},
	}
}
