package validate

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
	"github.com/tidwall/gjson"
)

// checkSchema inbounds/outbounds 缺失或不是数组时停止流水线，其余问题只记录
func checkSchema(root gjson.Result) ([]Issue, bool) {
	var issues []Issue
	halt := false
	for _, key := range []string{"inbounds", "outbounds"} {
		v := root.Get(key)
		switch {
		case !v.Exists():
			issues = append(issues, errorIssue(StageSchema, cfgerr.SchemaViolation, key, "required section %q is missing", key))
			halt = true
		case !v.IsArray():
			issues = append(issues, errorIssue(StageSchema, cfgerr.SchemaViolation, key, "section %q must be a list", key))
			halt = true
		}
	}
	if halt {
		return issues, true
	}

	if !root.Get("log").Exists() {
		issues = append(issues, warningIssue(StageSchema, cfgerr.MissingField, "log", "log section is missing, engine defaults apply"))
	}

	tags := map[string]int{}
	for i, in := range root.Get("inbounds").Array() {
		issues = append(issues, checkInboundShape(i, in, tags)...)
	}
	for i, out := range root.Get("outbounds").Array() {
		field := fmt.Sprintf("outbounds.%d", i)
		if !out.IsObject() {
			issues = append(issues, errorIssue(StageSchema, cfgerr.SchemaViolation, field, "outbound must be an object"))
			continue
		}
		if out.Get("type").String() == "" {
			issues = append(issues, errorIssue(StageSchema, cfgerr.MissingField, field+".type", "outbound type is required"))
		}
	}
	return issues, false
}

func checkInboundShape(i int, in gjson.Result, tags map[string]int) []Issue {
	field := fmt.Sprintf("inbounds.%d", i)
	if !in.IsObject() {
		return []Issue{errorIssue(StageSchema, cfgerr.SchemaViolation, field, "inbound must be an object")}
	}

	var issues []Issue
	typ := in.Get("type").String()
	if typ == "" {
		issues = append(issues, errorIssue(StageSchema, cfgerr.MissingField, field+".type", "inbound type is required"))
	}

	tag := in.Get("tag").String()
	if tag == "" {
		issues = append(issues, errorIssue(StageSchema, cfgerr.MissingField, field+".tag", "inbound tag is required"))
	} else if first, dup := tags[tag]; dup {
		issues = append(issues, errorIssue(StageSchema, cfgerr.InvalidValue, field+".tag",
			"tag %q is already used by inbounds.%d", tag, first))
	} else {
		tags[tag] = i
	}

	serverSide := typ == document.TypeVLESS || typ == document.TypeHysteria2
	port := in.Get("listen_port")
	switch {
	case !port.Exists():
		if serverSide {
			issues = append(issues, errorIssue(StageSchema, cfgerr.MissingField, field+".listen_port", "listen port is required"))
		}
	case port.Type != gjson.Number || port.Num != float64(port.Int()) || port.Int() < 1 || port.Int() > 65535:
		issues = append(issues, errorIssue(StageSchema, cfgerr.InvalidValue, field+".listen_port",
			"listen port %s out of range 1-65535", port.Raw))
	}

	if serverSide && len(in.Get("users").Array()) == 0 {
		issues = append(issues, errorIssue(StageSchema, cfgerr.MissingField, field+".users", "at least one user is required"))
	}

	return append(issues, checkCompatibility(field, in)...)
}

// checkCompatibility 从文档反推 (transport, security, flow) 再次走兼容矩阵，手工修改过的文档也能被拦下
func checkCompatibility(field string, in gjson.Result) []Issue {
	transport, ok := transportOf(in)
	if !ok {
		return nil
	}
	security := securityOf(in)

	flows := map[string]bool{}
	var issues []Issue
	for j, u := range in.Get("users").Array() {
		flow := u.Get("flow").String()
		if flow == "" || flows[flow] {
			continue
		}
		flows[flow] = true
		if err := protocol.Validate(transport, security, flow); err != nil {
			issues = append(issues, compatIssue(fmt.Sprintf("%s.users.%d.flow", field, j), err))
		}
	}
	if len(flows) == 0 {
		if err := protocol.Validate(transport, security, ""); err != nil {
			issues = append(issues, compatIssue(field, err))
		}
	}
	return issues
}

func compatIssue(field string, err error) Issue {
	kind := cfgerr.KindOf(err)
	if kind == "" {
		kind = cfgerr.IncompatibleCombination
	}
	return errorIssue(StageSchema, kind, field, "%v", err)
}

func transportOf(in gjson.Result) (protocol.Transport, bool) {
	switch in.Get("transport.type").String() {
	case "":
		if in.Get("type").String() == document.TypeHysteria2 {
			return protocol.TransportQUIC, true
		}
		return protocol.TransportTCP, true
	case "ws":
		return protocol.TransportWebSocket, true
	case "grpc":
		return protocol.TransportGRPC, true
	case "http":
		return protocol.TransportHTTP, true
	case "quic":
		return protocol.TransportQUIC, true
	default:
		return "", false
	}
}

func securityOf(in gjson.Result) protocol.Security {
	switch {
	case in.Get("tls.reality.enabled").Bool():
		return protocol.SecurityReality
	case in.Get("tls.enabled").Bool():
		return protocol.SecurityTLS
	default:
		return protocol.SecurityNone
	}
}
