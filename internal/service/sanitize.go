package service

import "strings"

// substitutions rewrite markup symbols and math operators into their spoken
// form. Order matters: the bold marker must go before the single asterisk it
// contains, and the plus/minus rules run last so they never touch characters
// introduced by an earlier rule.
var substitutions = []struct {
	old string
	new string
}{
	{"**", ""},
	{"*", ""},
	{"`", ""},
	{"~", ""},
	{"(", ""},
	{")", ""},
	{"[", ""},
	{"]", ""},
	{"{", ""},
	{"}", ""},
	{"&", " and "},
	{"%", " percent "},
	{"=", " equals "},
	{"≈", " approximately "},
	{"∝", " proportional to "},
	{"×", " multiplied by "},
	{"÷", " divided by "},
	{"°", " degrees "},
	{"+", " plus "},
	{"-", " minus "},
}

// Sanitize rewrites text into a speech-friendly form: symbols are spelled out
// and whitespace runs collapse to single spaces. It is total and idempotent.
func Sanitize(text string) string {
	for _, s := range substitutions {
		text = strings.ReplaceAll(text, s.old, s.new)
	}
	return CollapseWhitespace(text)
}

// CollapseWhitespace reduces every whitespace run to a single space and trims
// the ends. Used by the read actions, which must preserve literal characters.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
