package classify

import (
	"regexp"
	"strings"
)

const MagnetPrefix = "magnet:?"

// Full-string URL: scheme, optional userinfo, host (one or more labels or IPv4),
// optional port, optional path/query/fragment.
var urlRE = regexp.MustCompile(`(?i)^(?:https?|ftp)://` +
	`(?:[^\s:@/]+(?::[^\s@/]*)?@)?` +
	`(?:` + label + `(?:\.` + label + `)*\.?)` +
	`(?::\d{2,5})?` +
	`(?:[/?#][^\s"]*)?$`)

const label = `[a-z0-9\x{00a1}-\x{ffff}](?:[a-z0-9\x{00a1}-\x{ffff}-]*[a-z0-9\x{00a1}-\x{ffff}])?`

type Query struct {
	Direct bool
	Value  string
}

func Classify(input string) Query {
	v := strings.TrimSpace(input)
	return Query{Direct: IsMagnet(v) || IsURL(v), Value: v}
}

func IsMagnet(s string) bool { return strings.HasPrefix(s, MagnetPrefix) }

// IsURL reports whether the whole string is a URL, not merely contains one.
func IsURL(s string) bool { return urlRE.MatchString(s) }
