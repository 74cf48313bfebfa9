// Package keys 生成部署所需的凭据：Reality x25519 密钥对、short id、UUID、Hysteria2 密码。
package keys

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/curve25519"
)

// RealityKeyPair Reality 的 x25519 密钥对，base64 raw url 编码
type RealityKeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// NewRealityKeyPair 生成新的 Reality 密钥对
func NewRealityKeyPair() (RealityKeyPair, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return RealityKeyPair{}, fmt.Errorf("failed to generate reality private key: %w", err)
	}
	// clamp
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return RealityKeyPair{}, fmt.Errorf("failed to derive reality public key: %w", err)
	}
	return RealityKeyPair{
		PrivateKey: base64.RawURLEncoding.EncodeToString(priv),
		PublicKey:  base64.RawURLEncoding.EncodeToString(pub),
	}, nil
}

// PublicKeyOf 由私钥推导公钥，客户端需要公钥
func PublicKeyOf(privateKey string) (string, error) {
	priv, err := base64.RawURLEncoding.DecodeString(privateKey)
	if err != nil {
		return "", fmt.Errorf("invalid reality private key: %w", err)
	}
	if len(priv) != curve25519.ScalarSize {
		return "", fmt.Errorf("invalid reality private key length: %d", len(priv))
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return "", fmt.Errorf("failed to derive reality public key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(pub), nil
}

// NewShortID 生成 8 字节（16 位十六进制）的 short id
func NewShortID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate short id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewUUID 生成 VLESS 用户 UUID (v4)
func NewUUID() string {
	return uuid.NewString()
}

// NewPassword 生成 Hysteria2 密码
func NewPassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
