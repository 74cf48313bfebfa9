package config

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/kyson-dev/sing-deploy/internal/persist"
)

// ConfigBuilder 配置构建器
// 支持链式调用添加模块，灵活组装配置
type ConfigBuilder struct {
	deployment *Deployment    // 部署参数
	modules    []ConfigModule // 配置模块列表
	ctx        *BuildContext  // 构建上下文
}

// Generate 按部署参数编译完整文档，不写盘
func Generate(d *Deployment) (*document.Document, error) {
	builder := newConfigBuilder(d)
	for _, m := range defaultModules(builder.deployment) {
		builder.with(m)
	}
	return builder.build()
}

// BuildConfig 编译文档并原子写入 path；validate 在 rename 之前对临时文件执行
func BuildConfig(path string, d *Deployment, validate persist.Validator) (*document.Document, error) {
	doc, err := Generate(d)
	if err != nil {
		return nil, err
	}
	data, err := document.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := persist.WriteAtomic(path, data, validate); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	logger.Info("Config saved", "path", path, "inbounds", len(doc.Inbounds))
	return doc, nil
}

// newConfigBuilder 创建配置构建器，d 为空时使用 DefaultDeployment
func newConfigBuilder(d *Deployment) *ConfigBuilder {
	if d == nil {
		def := DefaultDeployment()
		d = &def
	}
	return &ConfigBuilder{
		deployment: d,
		modules:    []ConfigModule{},
		ctx:        NewBuildContext(d),
	}
}

// with 添加一个模块（链式调用）
func (b *ConfigBuilder) with(m ConfigModule) *ConfigBuilder {
	b.modules = append(b.modules, m)
	return b
}

// build 依次应用各模块
func (b *ConfigBuilder) build() (*document.Document, error) {
	result := &document.Document{}

	for _, m := range b.modules {
		logger.Debug("Applying config module", "name", m.Name())
		if err := m.Apply(result, b.ctx); err != nil {
			return nil, fmt.Errorf("module %s failed: %w", m.Name(), err)
		}
	}

	return result, nil
}

// defaultModules 根据部署参数返回模块组合：骨架、每个协议一个入站模块、组装
func defaultModules(d *Deployment) []ConfigModule {
	modules := []ConfigModule{
		&BaseModule{DualStack: d.DualStack, LogLevel: d.LogLevel},
	}
	for i := range d.Protocols {
		modules = append(modules, &InboundModule{Protocol: d.Protocols[i]})
	}
	modules = append(modules, &AssembleModule{})
	return modules
}
