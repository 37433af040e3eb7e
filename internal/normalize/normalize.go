// Package normalize filters placeholder emails and canonicalizes phone numbers.
package normalize

import (
	"regexp"
	"strings"
)

// Exact dummy addresses that show up on template sites.
var denyAddresses = map[string]bool{
	"info@example.com":  true,
	"email@example.com": true,
	"test@test.com":     true,
	"you@example.com":   true,
	"name@domain.com":   true,
}

// Substring denylist for domains that never belong to the business itself:
// CMS placeholders, error trackers, markup vocabularies.
var denySubstrings = []string{
	"example.",
	"@example",
	"wixpress",
	"sentry",
	"schema.org",
	"yourdomain",
	"mysite.com",
	"noreply",
	"no-reply",
	".png",
	".jpg",
	".gif",
}

// PhonePolicy decides what happens to numbers that are not 10 or 11 digits.
// Source data disagrees on this, so it stays a configuration choice.
type PhonePolicy int

const (
	// PassThrough keeps an unnormalizable number verbatim.
	PassThrough PhonePolicy = iota
	// Drop discards an unnormalizable number entirely.
	Drop
)

// ParsePhonePolicy maps a config string to a policy. Empty defaults to
// pass-through.
func ParsePhonePolicy(s string) (PhonePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "passthrough", "pass-through":
		return PassThrough, true
	case "drop":
		return Drop, true
	}
	return PassThrough, false
}

// Filter rejects placeholder and low-signal email addresses. The zero value
// uses the built-in denylist only.
type Filter struct {
	extra []string
}

// NewFilter returns a Filter with additional denylist substrings from config.
func NewFilter(extra []string) *Filter {
	f := &Filter{}
	for _, e := range extra {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			f.extra = append(f.extra, e)
		}
	}
	return f
}

// IsPlaceholderEmail reports whether the address should be treated as absent.
func (f *Filter) IsPlaceholderEmail(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return true
	}
	if denyAddresses[e] {
		return true
	}
	for _, s := range denySubstrings {
		if strings.Contains(e, s) {
			return true
		}
	}
	for _, s := range f.extra {
		if strings.Contains(e, s) {
			return true
		}
	}
	return false
}

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhone strips formatting and returns a dialable +1-AAA-BBB-CCCC
// form for domestic numbers. An 11-digit number with a leading 1 is treated
// as domestic. Anything else is handled per policy.
func NormalizePhone(raw string, policy PhonePolicy) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "tel:") {
		raw = raw[4:]
	}
	digits := nonDigit.ReplaceAllString(raw, "")

	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return "+1-" + digits[0:3] + "-" + digits[3:6] + "-" + digits[6:10]
	}

	if policy == Drop {
		return ""
	}
	return raw
}
