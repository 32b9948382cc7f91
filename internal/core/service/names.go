package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// normalizeName collapses whitespace and capitalizes each word, leaving
// existing capitals alone ("mc DONALD" -> "Mc DONALD").
func normalizeName(name string) string {
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}
