// Package migrate 把旧版字段改写为路由规则：
// 入站 sniff/sniff_timeout → {inbound, action: sniff}，入站/出站 domain_strategy → {action: resolve}。
package migrate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/config"
	"github.com/kyson-dev/sing-deploy/internal/document"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Change 一处改写
type Change struct {
	Field  string `json:"field"`
	Action string `json:"action"`
}

func (c Change) String() string {
	return c.Field + ": " + c.Action
}

// Result 改写后的文档与改动列表，Changes 为空时 Data 与输入一致
type Result struct {
	Data    []byte
	Changes []Change
}

// Migrate 改写 data 中的旧字段，新规则插在已有规则之前（sniff 在 resolve 之前）
func Migrate(data []byte) (*Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, cfgerr.New(cfgerr.SyntaxError, "", "document is not well-formed JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, cfgerr.New(cfgerr.SyntaxError, "", "document must be a JSON object")
	}

	var (
		out      = data
		changes  []Change
		sniffs   []document.Rule
		resolves []document.Rule
		deletes  []string
		err      error
	)

	inbounds := root.Get("inbounds").Array()
	used := make(map[string]bool, len(inbounds))
	for _, in := range inbounds {
		if tag := in.Get("tag").String(); tag != "" {
			used[tag] = true
		}
	}

	for i, in := range inbounds {
		prefix := fmt.Sprintf("inbounds.%d", i)
		tag := in.Get("tag").String()
		if tag == "" && hasLegacyInboundField(in) {
			tag = config.MakeUniqueTag(fmt.Sprintf("in-%d", i), used)
			if out, err = sjson.SetBytes(out, prefix+".tag", tag); err != nil {
				return nil, fmt.Errorf("set %s.tag: %w", prefix, err)
			}
			changes = append(changes, Change{Field: prefix + ".tag", Action: "assigned tag " + tag})
		}

		if in.Get("sniff").Bool() {
			rule := document.Rule{Inbound: []string{tag}, Action: document.ActionSniff}
			if t := in.Get("sniff_timeout"); t.Exists() {
				rule.Timeout = t.String()
			}
			sniffs = append(sniffs, rule)
			changes = append(changes, Change{Field: prefix + ".sniff", Action: "moved to route rule {inbound: [" + tag + "], action: sniff}"})
		}
		for _, key := range []string{"sniff", "sniff_timeout", "sniff_override_destination"} {
			if in.Get(key).Exists() {
				deletes = append(deletes, prefix+"."+key)
				if key != "sniff" || !in.Get(key).Bool() {
					changes = append(changes, Change{Field: prefix + "." + key, Action: "removed"})
				}
			}
		}

		if ds := in.Get("domain_strategy"); ds.Exists() {
			resolves = append(resolves, document.Rule{Inbound: []string{tag}, Action: document.ActionResolve, Strategy: ds.String()})
			deletes = append(deletes, prefix+".domain_strategy")
			changes = append(changes, Change{Field: prefix + ".domain_strategy", Action: "moved to route rule {inbound: [" + tag + "], action: resolve}"})
		}
	}

	for i, o := range root.Get("outbounds").Array() {
		if ds := o.Get("domain_strategy"); ds.Exists() {
			field := fmt.Sprintf("outbounds.%d.domain_strategy", i)
			resolves = append(resolves, document.Rule{Action: document.ActionResolve, Strategy: ds.String()})
			deletes = append(deletes, field)
			changes = append(changes, Change{Field: field, Action: "moved to route rule {action: resolve}"})
		}
	}

	if len(changes) == 0 {
		return &Result{Data: data}, nil
	}

	for _, path := range deletes {
		if out, err = sjson.DeleteBytes(out, path); err != nil {
			return nil, fmt.Errorf("delete %s: %w", path, err)
		}
	}

	if added := append(sniffs, resolves...); len(added) > 0 {
		rules, err := prependRules(added, root.Get("route.rules"))
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "route.rules", rules); err != nil {
			return nil, fmt.Errorf("set route.rules: %w", err)
		}
	}

	return &Result{Data: pretty.Pretty(out), Changes: changes}, nil
}

func hasLegacyInboundField(in gjson.Result) bool {
	for _, key := range []string{"sniff", "sniff_timeout", "sniff_override_destination", "domain_strategy"} {
		if in.Get(key).Exists() {
			return true
		}
	}
	return false
}

func prependRules(added []document.Rule, existing gjson.Result) ([]byte, error) {
	parts := make([]string, 0, len(added)+len(existing.Array()))
	for _, r := range added {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal rule: %w", err)
		}
		parts = append(parts, string(b))
	}
	for _, r := range existing.Array() {
		parts = append(parts, r.Raw)
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}
