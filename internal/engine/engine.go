// Package engine 把最终的接受/拒绝交给 sing-box 自己确认：
// 调用已安装的 sing-box check 子命令，或在进程内用 sing-box 的解析器解码。
package engine

import (
	"context"
)

// Result 一次引擎检查的结果。Ran=false 表示引擎不可用，检查被跳过，不算失败。
type Result struct {
	Engine string
	Ran    bool
	OK     bool
	Output string
}

// Skipped 检查是否被跳过
func (r Result) Skipped() bool {
	return !r.Ran
}

// Checker 对磁盘上的配置文件做黑盒检查
type Checker interface {
	Check(ctx context.Context, path string) (Result, error)
}
