package domain

import "strings"

var textReplacer = strings.NewReplacer(
	"*", "",
	"_", "",
	"`", "",
	"–", "-",
	"“", `"`,
	"”", `"`,
)

// CleanText strips markdown emphasis characters, folds en-dashes and curly
// double quotes to ASCII, and collapses runs of whitespace.
// Heading candidates and titles are always compared in this form.
func CleanText(s string) string {
	return NormalizeSpace(textReplacer.Replace(s))
}

// NormalizeSpace trims s and collapses every run of whitespace to one space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
