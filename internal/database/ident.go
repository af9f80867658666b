package database

import "strings"

// WrapIdent quotes an identifier with backticks, escaping any embedded
// backtick by doubling it.
func WrapIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// CleanIdent strips surrounding backticks from an identifier if present.
func CleanIdent(name string) string {
	return strings.Trim(name, "`")
}

// QuoteString renders a string value as a single-quoted SQL literal,
// escaping backslashes and embedded quotes.
func QuoteString(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + replacer.Replace(value) + "'"
}
