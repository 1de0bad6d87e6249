package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// StripSpaces removes every whitespace rune, not just the outer ones.
func StripSpaces(input string) string {
	return strings.Join(strings.Fields(input), "")
}

// EmailLocalPart returns everything before the first "@".
func EmailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}
