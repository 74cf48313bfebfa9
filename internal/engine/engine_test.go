package engine_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kyson-dev/sing-deploy/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out  []byte
	err  error
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.args = append([]string{name}, args...)
	return f.out, f.err
}

// exitRunner 运行一个真实的失败进程，得到 *exec.ExitError
type exitRunner struct{}

func (exitRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "sh", "-c", "echo 'FATAL decode config: unknown field'; exit 1").CombinedOutput()
}

func TestBinaryChecker_OK(t *testing.T) {
	runner := &fakeRunner{out: []byte("\n")}
	c := engine.NewBinaryChecker("")
	c.SetRunner(runner)

	res, err := c.Check(context.Background(), "/etc/sing-box/config.json")
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"sing-box", "check", "-c", "/etc/sing-box/config.json"}, runner.args)
}

// TestBinaryChecker_MissingBinary 找不到引擎不是校验失败
func TestBinaryChecker_MissingBinary(t *testing.T) {
	c := engine.NewBinaryChecker("sing-box")
	c.SetRunner(&fakeRunner{err: exec.ErrNotFound})

	res, err := c.Check(context.Background(), "config.json")
	require.NoError(t, err)
	assert.True(t, res.Skipped())
	assert.False(t, res.OK)

	// 真实 runner + 不存在的绝对路径
	c = engine.NewBinaryChecker(filepath.Join(t.TempDir(), "no-such-sing-box"))
	res, err = c.Check(context.Background(), "config.json")
	require.NoError(t, err)
	assert.True(t, res.Skipped())
}

func TestBinaryChecker_Rejects(t *testing.T) {
	c := engine.NewBinaryChecker("sing-box")
	c.SetRunner(exitRunner{})

	res, err := c.Check(context.Background(), "config.json")
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.False(t, res.OK)
	assert.Contains(t, res.Output, "unknown field")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const realityConfig = `{
  "log": {"level": "info", "timestamp": true},
  "inbounds": [
    {
      "type": "vless",
      "tag": "in-reality",
      "listen": "::",
      "listen_port": 443,
      "users": [{"name": "user-1", "uuid": "a1b2c3d4-e5f6-7890-1234-567890abcdef", "flow": "xtls-rprx-vision"}],
      "tls": {
        "enabled": true,
        "server_name": "www.microsoft.com",
        "reality": {
          "enabled": true,
          "handshake": {"server": "www.microsoft.com", "server_port": 443},
          "private_key": "uC9Vu1Z3gCgYzWmOZBHU3sUUJ9lQ4yBz4G8cTzEHgUo",
          "short_id": ["0123456789abcdef"],
          "max_time_difference": "1m"
        }
      }
    }
  ],
  "outbounds": [{"type": "direct", "tag": "direct"}],
  "route": {"rules": [{"inbound": ["in-reality"], "action": "sniff"}, {"protocol": ["dns"], "action": "hijack-dns"}], "final": "direct"}
}`

func TestLibraryChecker(t *testing.T) {
	c := &engine.LibraryChecker{}

	res, err := c.Check(context.Background(), writeConfig(t, realityConfig))
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.True(t, res.OK, res.Output)

	res, err = c.Check(context.Background(), writeConfig(t, `{"inbounds":[{"type":"vless","listen_port":"abc"}]}`))
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Output)

	_, err = c.Check(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

const mixedConfig = `{
  "log": {"level": "info"},
  "inbounds": [{"type": "mixed", "tag": "in-mixed", "listen": "127.0.0.1", "listen_port": 1080}],
  "outbounds": [{"type": "direct", "tag": "direct"}],
  "route": {"final": "direct"}
}`

// TestLibraryChecker_Instantiate box.New 只创建实例，不监听端口
func TestLibraryChecker_Instantiate(t *testing.T) {
	c := &engine.LibraryChecker{Instantiate: true}

	res, err := c.Check(context.Background(), writeConfig(t, mixedConfig))
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.True(t, res.OK, res.Output)

	// Reality 服务端是否编进来取决于 build tag；没编进来时也必须是创建阶段失败，而不是解码失败
	res, err = c.Check(context.Background(), writeConfig(t, realityConfig))
	require.NoError(t, err)
	assert.True(t, res.Ran)
	if !res.OK {
		assert.True(t, strings.HasPrefix(res.Output, "create:"), res.Output)
	}

	// 能解码但私钥无效，只有实例化才会发现
	broken := strings.Replace(realityConfig, "uC9Vu1Z3gCgYzWmOZBHU3sUUJ9lQ4yBz4G8cTzEHgUo", "not-a-key", 1)
	decodeOnly, err := (&engine.LibraryChecker{}).Check(context.Background(), writeConfig(t, broken))
	require.NoError(t, err)
	assert.True(t, decodeOnly.OK, decodeOnly.Output)

	res, err = c.Check(context.Background(), writeConfig(t, broken))
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.False(t, res.OK)
	assert.True(t, strings.HasPrefix(res.Output, "create:"), res.Output)
}

func TestFirstAvailable_FallsBack(t *testing.T) {
	missing := engine.NewBinaryChecker("sing-box")
	missing.SetRunner(&fakeRunner{err: exec.ErrNotFound})

	chain := engine.FirstAvailable{missing, &engine.LibraryChecker{}}
	res, err := chain.Check(context.Background(), writeConfig(t, realityConfig))
	require.NoError(t, err)
	assert.Equal(t, "sing-box (library)", res.Engine)
	assert.True(t, res.OK, res.Output)

	res, err = engine.FirstAvailable{missing}.Check(context.Background(), "config.json")
	require.NoError(t, err)
	assert.True(t, res.Skipped())
}

func TestNew(t *testing.T) {
	for _, kind := range []string{"", "auto", "binary", "library", "library-full"} {
		c, err := engine.New(kind, "")
		require.NoError(t, err, kind)
		assert.NotNil(t, c, kind)
	}
	full, err := engine.New("library-full", "")
	require.NoError(t, err)
	assert.Equal(t, &engine.LibraryChecker{Instantiate: true}, full)

	c, err := engine.New("none", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = engine.New("docker", "")
	var kindErr *engine.UnknownKindError
	assert.ErrorAs(t, err, &kindErr)
}
