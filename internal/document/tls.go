package document

// TLS 入站 TLS 块。手动证书字段 与 ACME 互斥，Reality 自带类 TLS 层不需要证书。
type TLS struct {
	Enabled         bool     `json:"enabled"`
	ServerName      string   `json:"server_name,omitempty"`
	ALPN            []string `json:"alpn,omitempty"`
	CertificatePath string   `json:"certificate_path,omitempty"`
	KeyPath         string   `json:"key_path,omitempty"`
	ACME            *ACME    `json:"acme,omitempty"`
	Reality         *Reality `json:"reality,omitempty"`
}

// ACME 自动签发。DNS01Challenge 只在 DNS-01 模式出现，此时 HTTP-01 和 TLS-ALPN 都被关闭。
type ACME struct {
	Domain                  []string        `json:"domain"`
	DataDirectory           string          `json:"data_directory"`
	Email                   string          `json:"email,omitempty"`
	Provider                string          `json:"provider"`
	DisableHTTPChallenge    bool            `json:"disable_http_challenge,omitempty"`
	DisableTLSALPNChallenge bool            `json:"disable_tls_alpn_challenge,omitempty"`
	DNS01Challenge          *DNS01Challenge `json:"dns01_challenge,omitempty"`
}

type DNS01Challenge struct {
	Provider string `json:"provider"`
	APIToken string `json:"api_token"`
}

type Reality struct {
	Enabled           bool             `json:"enabled"`
	Handshake         RealityHandshake `json:"handshake"`
	PrivateKey        string           `json:"private_key"`
	ShortID           []string         `json:"short_id"`
	MaxTimeDifference string           `json:"max_time_difference,omitempty"`
}

type RealityHandshake struct {
	Server     string `json:"server"`
	ServerPort uint16 `json:"server_port"`
}

// Manual 是否为手动证书（证书和私钥都已填写）
func (t *TLS) Manual() bool {
	return t != nil && t.CertificatePath != "" && t.KeyPath != ""
}
