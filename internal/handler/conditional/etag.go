// Package conditional converts between booking versions and HTTP entity tags
// and parses If-Match / If-None-Match into version conditions.
package conditional

import (
	"strconv"
	"strings"

	"travel-backoffice/internal/usecase/precondition"
)

const (
	HeaderETag        = "ETag"
	HeaderIfMatch     = "If-Match"
	HeaderIfNoneMatch = "If-None-Match"

	weakPrefix = "W/"
)

// FormatETag renders version as a strong entity tag: 3 -> "3".
func FormatETag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}

// ParseETag is the inverse of FormatETag. weak reports a W/ prefix. A bare
// integer without quotes is accepted as the same tag.
func ParseETag(tag string) (version int64, weak bool, ok bool) {
	tag = strings.TrimSpace(tag)
	if rest, found := strings.CutPrefix(tag, weakPrefix); found {
		weak = true
		tag = rest
	}

	if len(tag) >= 2 && tag[0] == '"' && tag[len(tag)-1] == '"' {
		tag = tag[1 : len(tag)-1]
	} else if weak || strings.ContainsRune(tag, '"') {
		return 0, false, false
	}

	if tag == "" || tag[0] == '+' || tag[0] == '-' {
		return 0, false, false
	}
	v, err := strconv.ParseInt(tag, 10, 64)
	if err != nil || v < 1 {
		return 0, false, false
	}
	return v, weak, true
}

// ParseIfMatch uses strong comparison: weak tags never match.
func ParseIfMatch(header string) precondition.Condition {
	return parse(header, true)
}

// ParseIfNoneMatch uses weak comparison: W/"3" matches version 3.
func ParseIfNoneMatch(header string) precondition.Condition {
	return parse(header, false)
}

func parse(header string, strong bool) precondition.Condition {
	header = strings.TrimSpace(header)
	if header == "" {
		return precondition.None
	}
	if header == "*" {
		return precondition.AnyVersion()
	}

	cond := precondition.Condition{Present: true}
	for _, raw := range strings.Split(header, ",") {
		v, weak, ok := ParseETag(raw)
		if !ok || (strong && weak) {
			continue
		}
		cond.Versions = append(cond.Versions, v)
	}
	return cond
}
