package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/config"
	"github.com/kyson-dev/sing-deploy/internal/engine"
	"github.com/kyson-dev/sing-deploy/internal/inbound"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
	"github.com/kyson-dev/sing-deploy/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "log": {"level": "info", "timestamp": true},
  "inbounds": [
    {
      "type": "vless", "tag": "in-reality", "listen": "::", "listen_port": 443,
      "users": [{"uuid": "a1b2c3d4-e5f6-7890-1234-567890abcdef", "flow": "xtls-rprx-vision"}],
      "tls": {"enabled": true, "server_name": "www.microsoft.com",
        "reality": {"enabled": true, "handshake": {"server": "www.microsoft.com", "server_port": 443},
          "private_key": "uC9Vu1Z3gCgYzWmOZBHU3sUUJ9lQ4yBz4G8cTzEHgUo", "short_id": ["0123456789abcdef"]}}
    },
    {
      "type": "vless", "tag": "in-ws", "listen": "::", "listen_port": 8443,
      "users": [{"uuid": "a1b2c3d4-e5f6-7890-1234-567890abcdef"}],
      "transport": {"type": "ws", "path": "/vless"},
      "tls": {"enabled": true, "server_name": "proxy.example.com",
        "acme": {"domain": ["proxy.example.com"], "data_directory": "/var/lib/sing-box/acme", "provider": "letsencrypt", "disable_tls_alpn_challenge": true}}
    }
  ],
  "outbounds": [{"type": "direct", "tag": "direct"}],
  "route": {"rules": [{"inbound": ["in-reality", "in-ws"], "action": "sniff"}, {"protocol": ["dns"], "action": "hijack-dns"}], "final": "direct"}
}`

func kinds(issues []validate.Issue) []cfgerr.Kind {
	out := make([]cfgerr.Kind, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Kind)
	}
	return out
}

func TestRun_ValidDocument(t *testing.T) {
	report := validate.New().Run([]byte(validDoc))
	assert.True(t, report.Accepted(), "%v", report.Issues)
	assert.Empty(t, report.Issues)
	assert.Equal(t, []validate.Stage{
		validate.StageSyntax, validate.StageSchema, validate.StagePorts, validate.StageTLS, validate.StageDeprecated,
	}, report.Ran)
	assert.NoError(t, report.Err())
}

func TestRun_SyntaxShortCircuits(t *testing.T) {
	for name, input := range map[string]string{
		"empty":      "",
		"whitespace": "  \n\t",
		"truncated":  `{"inbounds": [{"type": "vless", "listen_port": 443`,
		"not object": `[{"inbounds": []}]`,
		"garbage":    `inbounds: []`,
	} {
		t.Run(name, func(t *testing.T) {
			report := validate.New().Run([]byte(input))
			require.Len(t, report.Issues, 1)
			assert.Equal(t, validate.StageSyntax, report.Issues[0].Stage)
			assert.Equal(t, cfgerr.SyntaxError, report.Issues[0].Kind)
			assert.Equal(t, []validate.Stage{validate.StageSyntax}, report.Ran)
			assert.False(t, report.Accepted())
		})
	}
}

func TestRun_SchemaShortCircuits(t *testing.T) {
	// 端口冲突不会被报告，因为 outbounds 缺失时后续阶段不运行
	report := validate.New().Run([]byte(`{"inbounds": [
		{"type": "vless", "tag": "a", "listen_port": 443, "sniff": true},
		{"type": "vless", "tag": "b", "listen_port": 443}
	]}`))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, cfgerr.SchemaViolation, report.Issues[0].Kind)
	assert.Equal(t, "outbounds", report.Issues[0].Field)
	assert.Equal(t, []validate.Stage{validate.StageSyntax, validate.StageSchema}, report.Ran)

	report = validate.New().Run([]byte(`{"log": {}}`))
	assert.Equal(t, []cfgerr.Kind{cfgerr.SchemaViolation, cfgerr.SchemaViolation}, kinds(report.Issues))

	report = validate.New().Run([]byte(`{"inbounds": {}, "outbounds": []}`))
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "inbounds", report.Issues[0].Field)
}

func TestRun_EmptyListsPass(t *testing.T) {
	report := validate.New().Run([]byte(`{"log": {"level": "info"}, "inbounds": [], "outbounds": []}`))
	assert.True(t, report.Accepted())
	assert.Empty(t, report.Issues)

	// 缺少 log 只是警告
	report = validate.New().Run([]byte(`{"inbounds": [], "outbounds": []}`))
	assert.True(t, report.Accepted())
	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, "log", report.Warnings()[0].Field)
}

func TestRun_PortConflict(t *testing.T) {
	doc := `{"log": {}, "outbounds": [], "inbounds": [
		{"type": "vless", "tag": "in-reality", "listen_port": 443, "users": [{"uuid": "x"}]},
		{"type": "vless", "tag": "in-ws", "listen_port": 443, "users": [{"uuid": "x"}], "transport": {"type": "ws"}},
		{"type": "vless", "tag": "in-other", "listen_port": 8443, "users": [{"uuid": "x"}]}
	]}`
	report := validate.New().Run([]byte(doc))

	conflicts := report.ByStage(validate.StagePorts)
	require.Len(t, conflicts, 1)
	assert.Equal(t, cfgerr.PortConflict, conflicts[0].Kind)
	assert.Contains(t, conflicts[0].Message, "in-reality")
	assert.Contains(t, conflicts[0].Message, "in-ws")
	assert.NotContains(t, conflicts[0].Message, "in-other")
	assert.Equal(t, "inbounds.1.listen_port", conflicts[0].Field)

	assert.Empty(t, validate.New().Run([]byte(validDoc)).ByStage(validate.StagePorts))
}

func TestRun_PortConflictThreeWay(t *testing.T) {
	doc := `{"log": {}, "outbounds": [], "inbounds": [
		{"type": "vless", "tag": "a", "listen_port": 443, "users": [{"uuid": "x"}]},
		{"type": "vless", "tag": "b", "listen_port": 443, "users": [{"uuid": "x"}]},
		{"type": "hysteria2", "tag": "c", "listen_port": 443, "users": [{"password": "x"}]}
	]}`
	conflicts := validate.New().Run([]byte(doc)).ByStage(validate.StagePorts)
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Message, "a, b, c")
}

func TestRun_TLSConsistency(t *testing.T) {
	tests := []struct {
		name  string
		tls   string
		kinds []cfgerr.Kind
	}{
		{"manual", `{"enabled": true, "certificate_path": "/c", "key_path": "/k"}`, nil},
		{"inline", `{"enabled": true, "certificate": ["-----BEGIN"], "key": ["-----BEGIN"]}`, nil},
		{"acme", `{"enabled": true, "acme": {"domain": ["a.example.com"]}}`, nil},
		{"disabled", `{"enabled": false}`, nil},
		{"neither", `{"enabled": true}`, []cfgerr.Kind{cfgerr.MissingField}},
		{"both", `{"enabled": true, "certificate_path": "/c", "key_path": "/k", "acme": {"domain": ["a"]}}`, []cfgerr.Kind{cfgerr.IncompatibleCombination}},
		{"half pair", `{"enabled": true, "certificate_path": "/c"}`, []cfgerr.Kind{cfgerr.MissingField}},
		{"acme no domain", `{"enabled": true, "acme": {"domain": []}}`, []cfgerr.Kind{cfgerr.MissingField}},
		{"reality", `{"enabled": true, "reality": {"enabled": true, "private_key": "k", "handshake": {"server": "a"}}}`, nil},
		{"reality no key", `{"enabled": true, "reality": {"enabled": true, "handshake": {"server": "a"}}}`, []cfgerr.Kind{cfgerr.MissingField}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"log": {}, "outbounds": [], "inbounds": [{"type": "vless", "tag": "in", "listen_port": 443, "users": [{"uuid": "x"}], "tls": ` + tt.tls + `}]}`
			issues := validate.New().Run([]byte(doc)).ByStage(validate.StageTLS)
			if tt.kinds == nil {
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, tt.kinds, kinds(issues))
		})
	}
}

func TestRun_DNS01LeavesChallengesEnabled(t *testing.T) {
	doc := `{"log": {}, "outbounds": [], "inbounds": [{"type": "vless", "tag": "in", "listen_port": 443, "users": [{"uuid": "x"}],
		"tls": {"enabled": true, "acme": {"domain": ["a"], "dns01_challenge": {"provider": "cloudflare", "api_token": "t"}}}}]}`
	report := validate.New().Run([]byte(doc))
	assert.True(t, report.Accepted())
	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, validate.StageTLS, report.Warnings()[0].Stage)
}

// TestRun_DeprecatedSniffDoesNotHideOthers 旧 sniff 字段在 deprecated 阶段报错，其他阶段的问题照常报告
func TestRun_DeprecatedSniffDoesNotHideOthers(t *testing.T) {
	doc := `{"log": {}, "outbounds": [{"type": "direct", "tag": "direct", "domain_strategy": "prefer_ipv4"}], "inbounds": [
		{"type": "vless", "tag": "a", "listen_port": 443, "users": [{"uuid": "x"}], "sniff": true, "sniff_override_destination": true,
		 "tls": {"enabled": true}},
		{"type": "vless", "tag": "b", "listen_port": 443, "users": [{"uuid": "x"}]}
	]}`
	report := validate.New().Run([]byte(doc))
	assert.False(t, report.Accepted())

	deprecated := report.ByStage(validate.StageDeprecated)
	require.Len(t, deprecated, 3)
	for _, i := range deprecated {
		assert.Equal(t, cfgerr.DeprecatedField, i.Kind)
	}
	assert.Equal(t, "inbounds.0.sniff", deprecated[0].Field)
	assert.Equal(t, "inbounds.0.sniff_override_destination", deprecated[1].Field)
	assert.Equal(t, "outbounds.0.domain_strategy", deprecated[2].Field)

	assert.Len(t, report.ByStage(validate.StagePorts), 1)
	assert.Len(t, report.ByStage(validate.StageTLS), 1)

	// 阶段顺序保持不变
	var stages []validate.Stage
	for _, i := range report.Issues {
		if len(stages) == 0 || stages[len(stages)-1] != i.Stage {
			stages = append(stages, i.Stage)
		}
	}
	assert.Equal(t, []validate.Stage{validate.StagePorts, validate.StageTLS, validate.StageDeprecated}, stages)

	// 聚合后的错误里每一种类别都能查到
	err := report.Err()
	assert.True(t, cfgerr.IsKind(err, cfgerr.PortConflict))
	assert.True(t, cfgerr.IsKind(err, cfgerr.DeprecatedField))
	assert.False(t, cfgerr.IsKind(err, cfgerr.SyntaxError))
}

func TestRun_RouteRules(t *testing.T) {
	tests := []struct {
		name  string
		rules string
		kinds []cfgerr.Kind
	}{
		{"modern", `[{"inbound": ["in"], "action": "sniff"}, {"protocol": ["dns"], "action": "hijack-dns"}, {"domain_suffix": [".cn"], "action": "route", "outbound": "direct"}]`, nil},
		{"legacy outbound only", `[{"geosite": ["cn"], "outbound": "direct"}]`, nil},
		{"no action", `[{"protocol": ["dns"]}]`, []cfgerr.Kind{cfgerr.MissingField}},
		{"unknown action", `[{"protocol": ["dns"], "action": "drop"}]`, []cfgerr.Kind{cfgerr.InvalidValue}},
		{"route without outbound", `[{"protocol": ["dns"], "action": "route"}]`, []cfgerr.Kind{cfgerr.MissingField}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"log": {}, "inbounds": [], "outbounds": [], "route": {"rules": ` + tt.rules + `}}`
			issues := validate.New().Run([]byte(doc)).ByStage(validate.StageDeprecated)
			if tt.kinds == nil {
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, tt.kinds, kinds(issues))
		})
	}
}

func TestRun_LegacyOutboundsWarn(t *testing.T) {
	doc := `{"log": {}, "inbounds": [], "outbounds": [{"type": "direct", "tag": "direct"}, {"type": "dns", "tag": "dns-out"}, {"type": "block", "tag": "block"}],
		"dns": {"servers": [{"tag": "google", "address": "8.8.8.8"}]}}`
	report := validate.New().Run([]byte(doc))
	assert.True(t, report.Accepted())
	assert.Len(t, report.Warnings(), 3)
}

// TestRun_CompatibilityRecheck 手工修改过的文档也要走兼容矩阵
func TestRun_CompatibilityRecheck(t *testing.T) {
	doc := `{"log": {}, "outbounds": [], "inbounds": [
		{"type": "vless", "tag": "ws-reality", "listen_port": 443, "users": [{"uuid": "x"}], "transport": {"type": "ws"},
		 "tls": {"enabled": true, "reality": {"enabled": true, "private_key": "k", "handshake": {"server": "a"}}}},
		{"type": "vless", "tag": "ws-vision", "listen_port": 8443, "users": [{"uuid": "x", "flow": "xtls-rprx-vision"}], "transport": {"type": "ws"},
		 "tls": {"enabled": true, "certificate_path": "/c", "key_path": "/k"}}
	]}`
	schema := validate.New().Run([]byte(doc)).ByStage(validate.StageSchema)
	require.Len(t, schema, 2)
	assert.Equal(t, cfgerr.IncompatibleCombination, schema[0].Kind)
	assert.Equal(t, "inbounds.0", schema[0].Field)
	assert.Equal(t, cfgerr.IncompatibleCombination, schema[1].Kind)
	assert.Equal(t, "inbounds.1.users.0.flow", schema[1].Field)
}

func TestRun_InboundShape(t *testing.T) {
	doc := `{"log": {}, "outbounds": [{"tag": "x"}], "inbounds": [
		{"tag": "a", "listen_port": 443},
		{"type": "vless", "tag": "a", "listen_port": 70000, "users": []},
		{"type": "hysteria2", "listen_port": 1.5, "users": [{"password": "p"}]}
	]}`
	schema := validate.New().Run([]byte(doc)).ByStage(validate.StageSchema)
	fields := make([]string, 0, len(schema))
	for _, i := range schema {
		fields = append(fields, i.Field)
	}
	assert.Equal(t, []string{
		"inbounds.0.type",
		"inbounds.1.tag",
		"inbounds.1.listen_port",
		"inbounds.1.users",
		"inbounds.2.tag",
		"inbounds.2.listen_port",
		"outbounds.0.type",
	}, fields)
}

func generated(t *testing.T) *config.Deployment {
	t.Helper()
	return &config.Deployment{
		LogLevel: config.LogLevelInfo,
		Users:    []inbound.User{{UUID: "a1b2c3d4-e5f6-7890-1234-567890abcdef", Password: "secret"}},
		Certificate: config.Certificate{
			Mode:       protocol.CertModeACMEDNS01,
			ServerName: "proxy.example.com",
			DNSToken:   "token",
		},
		Protocols: []config.Protocol{
			{
				Selection: protocol.Selection{Transport: protocol.TransportTCP, Security: protocol.SecurityReality, Flow: protocol.VisionFlow},
				Port:      443,
				Params: inbound.Params{Reality: inbound.RealityParams{
					ServerName: "www.microsoft.com",
					PrivateKey: "uC9Vu1Z3gCgYzWmOZBHU3sUUJ9lQ4yBz4G8cTzEHgUo",
					ShortIDs:   []string{"0123456789abcdef"},
				}},
			},
			{Selection: protocol.Selection{Transport: protocol.TransportWebSocket, Security: protocol.SecurityTLS}, Port: 8443},
			{Selection: protocol.Selection{Transport: protocol.TransportQUIC, Security: protocol.SecurityTLS}, Port: 8444},
		},
	}
}

// TestRunDocument_Idempotent 生成的文档通过检查，重复运行结果一致
func TestRunDocument_Idempotent(t *testing.T) {
	doc, err := config.Generate(generated(t))
	require.NoError(t, err)

	p := validate.New()
	first, err := p.RunDocument(doc)
	require.NoError(t, err)
	second, err := p.RunDocument(doc)
	require.NoError(t, err)

	assert.True(t, first.Accepted(), "%v", first.Issues)
	assert.Empty(t, first.Issues)
	assert.Equal(t, first, second)
}

func TestRunDocument_SharedPortIsConflict(t *testing.T) {
	d := generated(t)
	d.Protocols[1].Port = 443
	doc, err := config.Generate(d)
	require.NoError(t, err)

	report, err := validate.New().RunDocument(doc)
	require.NoError(t, err)
	conflicts := report.ByStage(validate.StagePorts)
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Message, "in-reality, in-ws")
}

func TestReport_Err(t *testing.T) {
	report := validate.New().Run([]byte(`{"inbounds": []}`))
	err := report.Err()
	require.Error(t, err)

	var rejected *validate.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Len(t, rejected.Issues, 1)
	assert.True(t, errors.Is(err, &cfgerr.Error{Kind: cfgerr.SchemaViolation, Field: "outbounds"}))
	assert.True(t, strings.Contains(err.Error(), "outbounds"))
}

type fakeChecker struct {
	res  engine.Result
	err  error
	path string
}

func (f *fakeChecker) Check(ctx context.Context, path string) (engine.Result, error) {
	f.path = path
	return f.res, f.err
}

func TestValidator(t *testing.T) {
	ctx := context.Background()

	// 各阶段拒绝时不调用引擎
	checker := &fakeChecker{res: engine.Result{Ran: true, OK: true}}
	err := validate.New(validate.WithChecker(checker)).Validator(ctx)("/tmp/x.json", []byte(`{}`))
	var rejected *validate.RejectedError
	assert.ErrorAs(t, err, &rejected)
	assert.Empty(t, checker.path)

	// 引擎接受
	err = validate.New(validate.WithChecker(checker)).Validator(ctx)("/tmp/x.json", []byte(validDoc))
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/x.json", checker.path)

	// 引擎拒绝
	checker = &fakeChecker{res: engine.Result{Engine: "sing-box", Ran: true, OK: false, Output: "decode error"}}
	err = validate.New(validate.WithChecker(checker)).Validator(ctx)("/tmp/x.json", []byte(validDoc))
	var engineErr *validate.EngineRejectedError
	require.ErrorAs(t, err, &engineErr)
	assert.Contains(t, err.Error(), "decode error")

	// 引擎不存在不算失败
	checker = &fakeChecker{res: engine.Result{Engine: "sing-box"}}
	assert.NoError(t, validate.New(validate.WithChecker(checker)).Validator(ctx)("/tmp/x.json", []byte(validDoc)))

	// 没有配置引擎
	assert.NoError(t, validate.New().Validator(ctx)("/tmp/x.json", []byte(validDoc)))
}
