package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/persist"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 SING_DEPLOY_CERT_DNS_TOKEN 覆盖 cert.dns_token
const EnvPrefix = "SING_DEPLOY"

// 可以由环境变量覆盖的键，密钥类字段不必写进文件
var envKeys = []string{
	"log_level",
	"dual_stack",
	"listen",
	"engine_binary",
	"output",
	"cert.mode",
	"cert.server_name",
	"cert.email",
	"cert.dns_provider",
	"cert.dns_token",
}

// Load 读取 deployment.yaml，环境变量优先于文件
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &f, nil
}

// ReadFile 只读文件本身，不叠加环境变量。需要写回文件时必须用它，
// 否则只在环境变量里的密钥会被写进 deployment.yaml。
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &f, nil
}

// FillSecretsInFile 为文件中缺失的凭据生成随机值并写回，返回被填写的字段
func FillSecretsInFile(path string) ([]string, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	filled, err := f.FillSecrets()
	if err != nil {
		return nil, err
	}
	if len(filled) == 0 {
		return nil, nil
	}
	if err := Save(path, f); err != nil {
		return nil, err
	}
	return filled, nil
}

// Save 以 YAML 原子写入
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return persist.WriteAtomic(path, data, nil)
}
