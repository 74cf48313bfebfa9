package config

import (
	"strconv"
	"strings"
)

var reservedTags = map[string]bool{
	DirectTag:    true,
	DNSServerTag: true,
}

func IsReservedTag(tag string) bool {
	return reservedTags[tag]
}

// MakeUniqueTag 在 base 已被占用时追加 -2、-3 ... 直到唯一
func MakeUniqueTag(base string, used map[string]bool) string {
	tag := strings.TrimSpace(base)
	if tag == "" {
		tag = "in"
	}
	if IsReservedTag(tag) || used[tag] {
		for i := 2; ; i++ {
			candidate := tag + "-" + strconv.Itoa(i)
			if !IsReservedTag(candidate) && !used[candidate] {
				tag = candidate
				break
			}
		}
	}
	used[tag] = true
	return tag
}
