package validate

import (
	"fmt"
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/tidwall/gjson"
)

// checkPorts 每个重复的端口只报告一次，消息里列出所有占用它的入站
func checkPorts(root gjson.Result) []Issue {
	type user struct {
		index int
		label string
	}
	byPort := map[int64][]user{}
	var order []int64

	for i, in := range root.Get("inbounds").Array() {
		port := in.Get("listen_port")
		if port.Type != gjson.Number {
			continue
		}
		p := port.Int()
		if _, seen := byPort[p]; !seen {
			order = append(order, p)
		}
		byPort[p] = append(byPort[p], user{index: i, label: inboundLabel(i, in)})
	}

	var issues []Issue
	for _, p := range order {
		users := byPort[p]
		if len(users) < 2 {
			continue
		}
		labels := make([]string, 0, len(users))
		for _, u := range users {
			labels = append(labels, u.label)
		}
		issues = append(issues, errorIssue(StagePorts, cfgerr.PortConflict,
			fmt.Sprintf("inbounds.%d.listen_port", users[1].index),
			"port %d is used by multiple inbounds: %s", p, strings.Join(labels, ", ")))
	}
	return issues
}

func inboundLabel(i int, in gjson.Result) string {
	if tag := in.Get("tag").String(); tag != "" {
		return tag
	}
	return fmt.Sprintf("inbounds.%d", i)
}
