package validate

import (
	"bytes"
	"encoding/json"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/tidwall/gjson"
)

// checkSyntax 空文档、截断、非对象一律是语法错误
func checkSyntax(data []byte) []Issue {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Issue{errorIssue(StageSyntax, cfgerr.SyntaxError, "", "document is empty")}
	}
	if !gjson.ValidBytes(trimmed) {
		// encoding/json 的错误里带有出错的偏移量
		var raw json.RawMessage
		msg := "document is not well-formed JSON"
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			msg += ": " + err.Error()
		}
		return []Issue{errorIssue(StageSyntax, cfgerr.SyntaxError, "", "%s", msg)}
	}
	if !gjson.ParseBytes(trimmed).IsObject() {
		return []Issue{errorIssue(StageSyntax, cfgerr.SyntaxError, "", "document must be a JSON object")}
	}
	return nil
}
