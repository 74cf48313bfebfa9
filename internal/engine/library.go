package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/kyson-dev/sing-deploy/internal/logger"
	box "github.com/sagernet/sing-box"
	"github.com/sagernet/sing-box/include"
	"github.com/sagernet/sing-box/option"
	"github.com/sagernet/sing/common/json"
)

// LibraryChecker 用编译进来的 sing-box 解码配置；Instantiate 为 true 时还会 box.New 一次（不启动监听）
type LibraryChecker struct {
	Instantiate bool
}

func (c *LibraryChecker) Check(ctx context.Context, path string) (Result, error) {
	res := Result{Engine: "sing-box (library)", Ran: true}

	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// include.Context 注册了所有入站/出站类型，才能解析类型相关的选项
	boxCtx := include.Context(ctx)
	options, err := json.UnmarshalExtendedContext[option.Options](boxCtx, content)
	if err != nil {
		res.Output = fmt.Sprintf("decode: %v", err)
		return res, nil
	}

	if c.Instantiate {
		instance, err := box.New(box.Options{
			Context:           boxCtx,
			Options:           options,
			PlatformLogWriter: logger.NewPlatformWriter(),
		})
		if err != nil {
			res.Output = fmt.Sprintf("create: %v", err)
			return res, nil
		}
		if err := instance.Close(); err != nil {
			logger.Debug("Failed to close engine instance", "error", err)
		}
	}

	res.OK = true
	return res, nil
}
