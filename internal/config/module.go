package config

import (
	"github.com/kyson-dev/sing-deploy/internal/document"
)

// ConfigModule 配置模块接口
// 每个模块负责配置的一个部分，可以灵活组装
type ConfigModule interface {
	// Name 返回模块名称，用于日志和调试
	Name() string
	// Apply 将模块的配置应用到 doc 上
	Apply(doc *document.Document, ctx *BuildContext) error
}

// BuildContext 构建上下文，模块间共享数据
type BuildContext struct {
	// Deployment 部署参数
	Deployment *Deployment
	// Inbounds 已编译、等待组装的入站
	Inbounds []*document.Inbound
	// usedTags 已分配的入站 tag
	usedTags map[string]bool
}

// NewBuildContext 创建构建上下文
func NewBuildContext(d *Deployment) *BuildContext {
	return &BuildContext{
		Deployment: d,
		usedTags:   map[string]bool{},
	}
}
