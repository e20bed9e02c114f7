package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var connectors = map[string]bool{"de": true, "da": true, "do": true, "das": true, "dos": true, "e": true}

// NormalizeName collapses whitespace and title-cases provider names ("  são   PAULO " -> "São Paulo").
// Short all-caps tokens such as "EC" or "RB" keep their case.
func NormalizeName(s string) string {
	fields := strings.Fields(s)
	caser := cases.Title(language.BrazilianPortuguese)
	for i, f := range fields {
		if i > 0 && connectors[strings.ToLower(f)] {
			fields[i] = strings.ToLower(f)
			continue
		}
		if len([]rune(f)) <= 3 && f == strings.ToUpper(f) {
			continue
		}
		fields[i] = caser.String(f)
	}
	return strings.Join(fields, " ")
}

// FoldKey lowercases and strips accents for accent-insensitive matching ("Grêmio" -> "gremio").
func FoldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(unidecode.Unidecode(s)), " "))
}
