// Package env 解析工作目录以及其中的约定文件路径。
package env

import (
	"os"
	"path/filepath"
	"sync"
)

// HomeEnv 指定工作目录的环境变量
const HomeEnv = "SING_DEPLOY_HOME"

// FallbackHome 未指定任何工作目录时使用
const FallbackHome = "/etc/sing-deploy"

// Paths 定义了应用所有的关键路径
type Paths struct {
	HomeDir    string // 主目录
	ConfigFile string // deployment.yaml (部署参数)
	OutputFile string // config.json (交给 sing-box 的配置)
}

var (
	current Paths
	once    sync.Once
)

// Get 获取全局路径配置
func Get() Paths {
	return current
}

var (
	// 这个变量是给 ldflags 注入用的
	// 发行版打包时可以改成 /usr/local/etc/sing-deploy 之类的值
	DefaultHome string
)

// Init 初始化环境
// flagHome: 命令行传入的 --home 参数，为空则按 环境变量 > DefaultHome > FallbackHome 选择
func Init(flagHome string) error {
	var err error
	once.Do(func() {
		home := ""

		if flagHome != "" {
			home = flagHome
		} else if envHome := os.Getenv(HomeEnv); envHome != "" {
			home = envHome
		} else if DefaultHome != "" {
			home = DefaultHome
		} else {
			home = FallbackHome
		}

		home, err = filepath.Abs(home)
		if err != nil {
			return
		}

		if err = os.MkdirAll(home, 0755); err != nil {
			return
		}

		current = Resolve(home)
	})
	return err
}

// Resolve 计算 home 下的各个子路径，不创建任何目录
func Resolve(home string) Paths {
	return Paths{
		HomeDir:    home,
		ConfigFile: filepath.Join(home, "deployment.yaml"),
		OutputFile: filepath.Join(home, "config.json"),
	}
}

// ResetForTest 重置环境单例状态
// ⚠️ 仅供测试使用，生产代码禁止调用
func ResetForTest() {
	current = Paths{}
	once = sync.Once{}
}
