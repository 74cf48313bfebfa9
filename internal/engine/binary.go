package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/logger"
)

// DefaultBinary 默认在 PATH 中查找
const DefaultBinary = "sing-box"

// CommandRunner defines an interface for running commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner uses exec.CommandContext.
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// BinaryChecker 运行 `sing-box check -c <path>`
type BinaryChecker struct {
	binary string
	runner CommandRunner
}

// NewBinaryChecker binary 为空时使用 DefaultBinary
func NewBinaryChecker(binary string) *BinaryChecker {
	if binary == "" {
		binary = DefaultBinary
	}
	return &BinaryChecker{
		binary: binary,
		runner: &DefaultCommandRunner{},
	}
}

// SetRunner sets a custom command runner for testing.
func (c *BinaryChecker) SetRunner(runner CommandRunner) {
	c.runner = runner
}

func (c *BinaryChecker) Check(ctx context.Context, path string) (Result, error) {
	res := Result{Engine: c.binary}

	out, err := c.runner.Run(ctx, c.binary, "check", "-c", path)
	res.Output = strings.TrimSpace(string(out))
	if err == nil {
		res.Ran = true
		res.OK = true
		return res, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Engine binary not found, skipping check", "binary", c.binary)
		return Result{Engine: c.binary}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Ran = true
		res.OK = false
		if res.Output == "" {
			res.Output = exitErr.Error()
		}
		return res, nil
	}
	return res, fmt.Errorf("failed to run %s check: %w", c.binary, err)
}
