// Package persist 原子写入配置文件：先写临时文件，校验通过后 rename 到目标路径。
package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Validator 在 rename 之前对临时文件做校验，返回错误则放弃写入
type Validator func(tmpPath string, data []byte) error

// WriteAtomic 写入 path。校验失败或任何 I/O 错误都不会留下半成品，原文件保持不变。
func WriteAtomic(path string, data []byte, validate Validator) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// 临时文件必须和目标在同一目录，rename 才是原子的
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if validate != nil {
		if err := validate(tmpPath, data); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return nil
}
