package wa

import "strings"

// DigitsOnly strips everything but digits, the address format the Cloud API
// expects in the "to" field.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatE164 canonicalizes a phone number, prefixing the Brazil country code
// when an 11-digit local number is given.
func FormatE164(phone string) string {
	digits := DigitsOnly(phone)
	if !strings.HasPrefix(digits, "55") && len(digits) == 11 {
		digits = "55" + digits
	}
	return "+" + digits
}
