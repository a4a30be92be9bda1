package model

import (
	"strings"
	"unicode"
)

// surnamePrefixes are particles that belong to the surname.
var surnamePrefixes = map[string]bool{
	"von": true, "van": true, "de": true, "del": true, "der": true,
	"la": true, "le": true, "al": true, "bin": true, "binti": true,
	"el": true, "da": true, "di": true, "du": true, "dos": true,
}

// ParsePersonName splits a display name into surname and given names.
// It understands "Given Surname", "Surname, Given" and the initials-last
// citation form "Surname AB". Surname particles such as "van der" stay with
// the surname.
func ParsePersonName(s string) PersonName {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " ,;")
	if s == "" {
		return PersonName{}
	}

	if surname, given, ok := strings.Cut(s, ","); ok {
		return PersonName{Surname: strings.TrimSpace(surname), GivenNames: strings.TrimSpace(given)}
	}

	tokens := strings.Fields(s)
	if len(tokens) == 1 {
		return PersonName{Surname: tokens[0]}
	}

	last := tokens[len(tokens)-1]
	if isInitials(last) && !isInitials(tokens[0]) {
		return PersonName{
			Surname:    strings.Join(tokens[:len(tokens)-1], " "),
			GivenNames: last,
		}
	}

	split := len(tokens) - 1
	for i := 1; i < len(tokens)-1; i++ {
		if surnamePrefixes[strings.ToLower(tokens[i])] {
			split = i
			break
		}
	}
	return PersonName{
		Surname:    strings.Join(tokens[split:], " "),
		GivenNames: strings.Join(tokens[:split], " "),
	}
}

// isInitials reports whether tok looks like "J", "JA", "J.A." or "J-P".
func isInitials(tok string) bool {
	letters := 0
	for _, r := range tok {
		switch {
		case r == '.' || r == '-':
		case unicode.IsUpper(r):
			letters++
		default:
			return false
		}
	}
	return letters > 0 && letters <= 3
}
