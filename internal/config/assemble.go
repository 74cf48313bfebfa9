package config

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/kyson-dev/sing-deploy/internal/document"
)

// Assemble 把基础文档与入站合并为完整文档。
// 返回新的文档，base 本身不会被修改。
func Assemble(base *document.Document, inbounds ...*document.Inbound) (*document.Document, error) {
	if base == nil {
		return nil, cfgerr.Missing("base")
	}
	doc := base.Clone()

	used := make(map[string]bool, len(doc.Inbounds)+len(inbounds))
	for _, in := range doc.Inbounds {
		used[in.Tag] = true
	}
	for i, in := range inbounds {
		field := fmt.Sprintf("inbounds.%d", len(doc.Inbounds))
		if in == nil {
			return nil, cfgerr.Missing(field)
		}
		if in.Tag == "" {
			return nil, cfgerr.Missing(field + ".tag")
		}
		if used[in.Tag] {
			return nil, cfgerr.Invalid(field+".tag", "duplicate inbound tag %q (argument %d)", in.Tag, i)
		}
		used[in.Tag] = true
		doc.Inbounds = append(doc.Inbounds, *in)
	}

	if doc.Route == nil {
		doc.Route = &document.Route{}
	}
	doc.Route.Rules = withDefaultRules(doc.Route.Rules, doc.Tags())
	if doc.Route.Final == "" && len(doc.Outbounds) > 0 {
		doc.Route.Final = doc.Outbounds[0].Tag
	}

	return doc, nil
}

// withDefaultRules 在规则列表最前面放 sniff 和 hijack-dns 规则，已有同类规则时替换而不是重复添加
func withDefaultRules(rules []document.Rule, tags []string) []document.Rule {
	head := make([]document.Rule, 0, 2)
	if len(tags) > 0 {
		head = append(head, document.Rule{
			Inbound: append([]string(nil), tags...),
			Action:  document.ActionSniff,
		})
	}
	head = append(head, document.Rule{
		Protocol: []string{"dns"},
		Action:   document.ActionHijackDNS,
	})

	out := head
	for _, r := range rules {
		if r.Action == document.ActionSniff || r.Action == document.ActionHijackDNS {
			continue
		}
		out = append(out, r)
	}
	return out
}
