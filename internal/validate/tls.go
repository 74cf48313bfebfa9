package validate

import (
	"fmt"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/tidwall/gjson"
)

// checkTLS Reality 不需要证书；普通 TLS 必须且只能有 手动证书对 或 acme 之一
func checkTLS(root gjson.Result) []Issue {
	var issues []Issue
	for i, in := range root.Get("inbounds").Array() {
		tls := in.Get("tls")
		if !tls.Exists() {
			continue
		}
		field := fmt.Sprintf("inbounds.%d.tls", i)
		label := inboundLabel(i, in)

		if tls.Get("reality.enabled").Bool() {
			issues = append(issues, checkReality(field, label, tls)...)
			continue
		}
		if !tls.Get("enabled").Bool() {
			continue
		}

		hasCert := nonEmpty(tls, "certificate_path") || nonEmpty(tls, "certificate")
		hasKey := nonEmpty(tls, "key_path") || nonEmpty(tls, "key")
		manual := hasCert || hasKey
		acme := tls.Get("acme")

		switch {
		case manual && acme.Exists():
			issues = append(issues, errorIssue(StageTLS, cfgerr.IncompatibleCombination, field,
				"inbound %s sets both a certificate and acme", label))
		case !manual && !acme.Exists():
			issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field,
				"inbound %s enables tls without a certificate or acme", label))
		case manual && !hasCert:
			issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field+".certificate_path",
				"inbound %s has a key but no certificate", label))
		case manual && !hasKey:
			issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field+".key_path",
				"inbound %s has a certificate but no key", label))
		case acme.Exists():
			issues = append(issues, checkACME(field+".acme", label, acme)...)
		}
	}
	return issues
}

func checkReality(field, label string, tls gjson.Result) []Issue {
	var issues []Issue
	if !nonEmpty(tls, "reality.private_key") {
		issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field+".reality.private_key",
			"inbound %s enables reality without a private key", label))
	}
	if !tls.Get("reality.handshake.server").Exists() {
		issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field+".reality.handshake.server",
			"inbound %s enables reality without a handshake server", label))
	}
	return issues
}

func checkACME(field, label string, acme gjson.Result) []Issue {
	var issues []Issue
	if len(acme.Get("domain").Array()) == 0 {
		issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field+".domain",
			"inbound %s uses acme without a domain", label))
	}
	if dns01 := acme.Get("dns01_challenge"); dns01.Exists() {
		if !nonEmpty(dns01, "provider") {
			issues = append(issues, errorIssue(StageTLS, cfgerr.MissingField, field+".dns01_challenge.provider",
				"inbound %s uses dns-01 without a provider", label))
		}
		if !acme.Get("disable_http_challenge").Bool() || !acme.Get("disable_tls_alpn_challenge").Bool() {
			issues = append(issues, warningIssue(StageTLS, cfgerr.InvalidValue, field,
				"inbound %s uses dns-01 but leaves http-01 or tls-alpn challenges enabled", label))
		}
	}
	return issues
}

func nonEmpty(v gjson.Result, path string) bool {
	r := v.Get(path)
	if r.IsArray() {
		return len(r.Array()) > 0
	}
	return r.String() != ""
}
