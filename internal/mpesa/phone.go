package mpesa

import (
	"regexp"
	"strings"
)

var (
	nonDigits    = regexp.MustCompile(`\D`)
	kenyanNumber = regexp.MustCompile(`^254[0-9]{9}$`)
)

// FormatPhoneNumber normalizes a subscriber number to the 254 country
// format: strips non-digits, rewrites a leading 0, passes through numbers
// already carrying the prefix, and prefixes bare mobile numbers starting
// with 7 or 1. The result is not guaranteed valid; callers must check with
// ValidatePhoneNumber.
func FormatPhoneNumber(phone string) string {
	cleaned := nonDigits.ReplaceAllString(phone, "")

	switch {
	case strings.HasPrefix(cleaned, "0"):
		return "254" + cleaned[1:]
	case strings.HasPrefix(cleaned, "254"):
		return cleaned
	case strings.HasPrefix(cleaned, "7"), strings.HasPrefix(cleaned, "1"):
		return "254" + cleaned
	}

	return cleaned
}

// ValidatePhoneNumber reports whether the input normalizes to the canonical
// 254 + 9 digit pattern. Pure string check, no network involved.
func ValidatePhoneNumber(phone string) bool {
	return kenyanNumber.MatchString(FormatPhoneNumber(phone))
}
