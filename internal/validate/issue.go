// Package validate 在配置落盘之前对序列化后的文档做五个阶段的检查：
// syntax、schema、ports、tls、deprecated。
package validate

import (
	"fmt"
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
)

// Stage 流水线阶段
type Stage string

const (
	StageSyntax     Stage = "syntax"
	StageSchema     Stage = "schema"
	StagePorts      Stage = "ports"
	StageTLS        Stage = "tls"
	StageDeprecated Stage = "deprecated"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue 一条检查结果，Field 是文档内的点分路径
type Issue struct {
	Stage    Stage       `json:"stage"`
	Severity Severity    `json:"severity"`
	Field    string      `json:"field,omitempty"`
	Kind     cfgerr.Kind `json:"kind"`
	Message  string      `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("[%s] %s %s: %s", i.Stage, i.Severity, i.Kind, i.Message)
	}
	return fmt.Sprintf("[%s] %s %s (%s): %s", i.Stage, i.Severity, i.Kind, i.Field, i.Message)
}

// Err 转换为 cfgerr.Error，保留 Kind 和 Field
func (i Issue) Err() error {
	return cfgerr.New(i.Kind, i.Field, "%s", i.Message)
}

// Report 一次流水线运行的结果
type Report struct {
	Issues []Issue `json:"issues"`
	// Ran 实际执行过的阶段，短路时不包含后续阶段
	Ran []Stage `json:"stages"`
}

// Accepted 没有任何 error 级别的问题
func (r *Report) Accepted() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// ByStage 返回某个阶段产生的问题
func (r *Report) ByStage(s Stage) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Stage == s {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err 被拒绝时返回 *RejectedError，否则 nil
func (r *Report) Err() error {
	if r.Accepted() {
		return nil
	}
	return &RejectedError{Issues: r.Errors()}
}

// RejectedError 文档未通过流水线
type RejectedError struct {
	Issues []Issue
}

func (e *RejectedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.String())
	}
	return fmt.Sprintf("config rejected with %d error(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Unwrap 暴露每条问题对应的 cfgerr.Error，便于 errors.Is 按 Kind 匹配
func (e *RejectedError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Issues))
	for _, i := range e.Issues {
		errs = append(errs, i.Err())
	}
	return errs
}

func errorIssue(stage Stage, kind cfgerr.Kind, field, format string, args ...any) Issue {
	return Issue{Stage: stage, Severity: SeverityError, Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func warningIssue(stage Stage, kind cfgerr.Kind, field, format string, args ...any) Issue {
	return Issue{Stage: stage, Severity: SeverityWarning, Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
