package pipeline

import "strings"

// NormalizePhone canonicalizes an Australian mobile number to the
// +61 E.164 form. Numbers that do not match a known AU mobile shape
// normalize to "", which later drops the row from messaging keys.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	var b strings.Builder
	if s[0] == '+' {
		b.WriteByte('+')
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "+61") && len(digits) == 12:
		return digits
	case strings.HasPrefix(digits, "61") && len(digits) == 11:
		return "+" + digits
	case strings.HasPrefix(digits, "0") && len(digits) == 10 && digits[1] == '4':
		return "+61" + digits[1:]
	case strings.HasPrefix(digits, "4") && len(digits) == 9:
		return "+61" + digits
	}
	return ""
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// EmailDomain returns the lowercased domain part of an address, or ""
// when there is no "@".
func EmailDomain(email string) string {
	e := NormalizeEmail(email)
	i := strings.LastIndex(e, "@")
	if i < 0 {
		return ""
	}
	return e[i+1:]
}
