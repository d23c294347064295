package util

import (
	"regexp"
	"strings"
)

var (
	phoneJunk  = regexp.MustCompile(`[^\d\+]+`)
	phoneValid = regexp.MustCompile(`^\+?\d{7,15}$`)
)

// NormalizePhone strips spacing and punctuation and turns a leading 00 into +.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = phoneJunk.ReplaceAllString(s, "")

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}

	return s
}

// ValidPhone reports whether a normalized number looks dialable.
func ValidPhone(s string) bool {
	return phoneValid.MatchString(s)
}
