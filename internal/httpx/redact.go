package httpx

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var secretParams = []string{"apikey", "api_key", "passkey", "token", "key"}

// Redact masks credential query parameters so a URL can be logged or shown.
// Strings that do not parse as URLs come back unchanged.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || (u.RawQuery == "" && u.User == nil) {
		return raw
	}
	q := u.Query()
	changed := false
	for k := range q {
		for _, s := range secretParams {
			if strings.EqualFold(k, s) {
				q.Set(k, "***")
				changed = true
			}
		}
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedactError masks the URL carried by a transport error (*url.Error) in place.
func RedactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = Redact(ue.URL)
	}
	return err
}
