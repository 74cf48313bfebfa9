package validate

import (
	"context"
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/engine"
	"github.com/kyson-dev/sing-deploy/internal/logger"
	"github.com/kyson-dev/sing-deploy/internal/persist"
	"github.com/tidwall/gjson"
)

// stage 一个检查阶段。halt 为 true 时后续阶段不再运行。
type stage struct {
	name Stage
	run  func(root gjson.Result) (issues []Issue, halt bool)
}

// Pipeline 按固定顺序运行各阶段。没有可变状态，同一文档重复运行得到相同结果。
type Pipeline struct {
	stages  []stage
	checker engine.Checker
}

type Option func(*Pipeline)

// WithChecker 设置最终的引擎确认，nil 表示不确认
func WithChecker(c engine.Checker) Option {
	return func(p *Pipeline) {
		p.checker = c
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		stages: []stage{
			{StageSchema, checkSchema},
			{StagePorts, noHalt(checkPorts)},
			{StageTLS, noHalt(checkTLS)},
			{StageDeprecated, noHalt(checkDeprecated)},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func noHalt(f func(gjson.Result) []Issue) func(gjson.Result) ([]Issue, bool) {
	return func(root gjson.Result) ([]Issue, bool) {
		return f(root), false
	}
}

// Run 检查序列化后的文档
func (p *Pipeline) Run(data []byte) *Report {
	report := &Report{Issues: []Issue{}}

	report.Ran = append(report.Ran, StageSyntax)
	if issues := checkSyntax(data); len(issues) > 0 {
		report.Issues = append(report.Issues, issues...)
		logger.Debug("Validation halted", "stage", StageSyntax, "issues", len(issues))
		return report
	}

	root := gjson.ParseBytes(data)
	for _, s := range p.stages {
		issues, halt := s.run(root)
		report.Ran = append(report.Ran, s.name)
		report.Issues = append(report.Issues, issues...)
		logger.Debug("Validation stage finished", "stage", s.name, "issues", len(issues))
		if halt {
			logger.Debug("Validation halted", "stage", s.name)
			break
		}
	}
	return report
}

// RunDocument 序列化后检查，与写盘的字节完全一致
func (p *Pipeline) RunDocument(doc *document.Document) (*Report, error) {
	data, err := document.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return p.Run(data), nil
}

// Confirm 交给引擎做最终确认。没有配置 Checker 或引擎不可用时返回 Ran=false。
func (p *Pipeline) Confirm(ctx context.Context, path string) (engine.Result, error) {
	if p.checker == nil {
		return engine.Result{}, nil
	}
	return p.checker.Check(ctx, path)
}

// Validator 返回给 persist.WriteAtomic 使用的校验函数：先跑各阶段，再让引擎确认临时文件
func (p *Pipeline) Validator(ctx context.Context) persist.Validator {
	return func(tmpPath string, data []byte) error {
		report := p.Run(data)
		for _, w := range report.Warnings() {
			logger.Warn("Config warning", "issue", w.String())
		}
		if err := report.Err(); err != nil {
			return err
		}

		res, err := p.Confirm(ctx, tmpPath)
		if err != nil {
			return fmt.Errorf("engine check failed: %w", err)
		}
		if res.Skipped() {
			if p.checker != nil {
				logger.Info("Engine check skipped, engine not available", "engine", res.Engine)
			}
			return nil
		}
		if !res.OK {
			return &EngineRejectedError{Result: res}
		}
		logger.Info("Engine accepted config", "engine", res.Engine)
		return nil
	}
}

// EngineRejectedError 引擎拒绝了通过各阶段检查的文档
type EngineRejectedError struct {
	Result engine.Result
}

func (e *EngineRejectedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s rejected config: %s", e.Result.Engine, e.Result.Output)
}
