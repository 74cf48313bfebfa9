package validate

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	C "github.com/sagernet/sing-box/constant"
	"github.com/tidwall/gjson"
)

// DeprecatedInboundFields 已改为路由规则 {inbound, action: sniff/resolve} 的入站字段
var DeprecatedInboundFields = []string{
	"sniff",
	"sniff_override_destination",
	"sniff_timeout",
	"domain_strategy",
}

// DeprecatedOutboundFields 已改为 {action: resolve} 规则或 dial 字段的出站字段
var DeprecatedOutboundFields = []string{
	"domain_strategy",
}

// legacyOutboundTypes 已被规则 action 取代的特殊出站
var legacyOutboundTypes = map[string]string{
	C.TypeDNS:   "hijack-dns",
	C.TypeBlock: "reject",
}

var knownActions = map[string]bool{
	document.ActionRoute:     true,
	"route-options":          true,
	"direct":                 true,
	document.ActionReject:    true,
	document.ActionHijackDNS: true,
	document.ActionSniff:     true,
	document.ActionResolve:   true,
	"predefined":             true,
}

func checkDeprecated(root gjson.Result) []Issue {
	var issues []Issue

	for i, in := range root.Get("inbounds").Array() {
		label := inboundLabel(i, in)
		for _, key := range DeprecatedInboundFields {
			if in.Get(key).Exists() {
				issues = append(issues, errorIssue(StageDeprecated, cfgerr.DeprecatedField,
					fmt.Sprintf("inbounds.%d.%s", i, key),
					"inbound %s uses legacy field %q, use a route rule with action sniff/resolve instead", label, key))
			}
		}
	}

	for i, out := range root.Get("outbounds").Array() {
		tag := out.Get("tag").String()
		for _, key := range DeprecatedOutboundFields {
			if out.Get(key).Exists() {
				issues = append(issues, errorIssue(StageDeprecated, cfgerr.DeprecatedField,
					fmt.Sprintf("outbounds.%d.%s", i, key),
					"outbound %s uses legacy field %q, use a route rule with action resolve instead", tag, key))
			}
		}
		if action, legacy := legacyOutboundTypes[out.Get("type").String()]; legacy {
			issues = append(issues, warningIssue(StageDeprecated, cfgerr.DeprecatedField,
				fmt.Sprintf("outbounds.%d.type", i),
				"outbound type %q is deprecated, use a route rule with action %s", out.Get("type").String(), action))
		}
	}

	for i, server := range root.Get("dns.servers").Array() {
		if server.Get("address").Exists() {
			issues = append(issues, warningIssue(StageDeprecated, cfgerr.DeprecatedField,
				fmt.Sprintf("dns.servers.%d.address", i),
				"legacy dns server format, use typed servers such as {\"type\": \"local\"}"))
		}
	}

	for i, rule := range root.Get("route.rules").Array() {
		issues = append(issues, checkRule(fmt.Sprintf("route.rules.%d", i), rule)...)
	}
	return issues
}

// checkRule 规则必须是 {匹配条件, action}；没有 action 但有 outbound 的旧写法等价于 route
func checkRule(field string, rule gjson.Result) []Issue {
	action := rule.Get("action")
	if !action.Exists() {
		if rule.Get("outbound").String() != "" {
			return nil
		}
		return []Issue{errorIssue(StageDeprecated, cfgerr.MissingField, field+".action", "route rule has neither action nor outbound")}
	}
	if !knownActions[action.String()] {
		return []Issue{errorIssue(StageDeprecated, cfgerr.InvalidValue, field+".action", "unknown route rule action %q", action.String())}
	}
	if action.String() == document.ActionRoute && rule.Get("outbound").String() == "" {
		return []Issue{errorIssue(StageDeprecated, cfgerr.MissingField, field+".outbound", "route action requires an outbound")}
	}
	return nil
}
