package domain

import (
	"strconv"
)

// Placeholder delimiters. The token #_tpl_#<name>#<index>## replaces a
// template invocation in tokenized text.
const (
	PlaceholderOpen  = "#_tpl_#"
	PlaceholderSep   = "#"
	PlaceholderClose = "##"
)

// Placeholder returns the token that stands for the template name at index.
func Placeholder(name string, index int) string {
	return PlaceholderOpen + name + PlaceholderSep + itoa(index) + PlaceholderClose
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
