package domain

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	upperRe     = regexp.MustCompile(`([A-Z])`)
	lowerUpper  = regexp.MustCompile(`([a-z])([A-Z])`)
	menuSuffix  = regexp.MustCompile(`_menu$`)
	multiSpaces = regexp.MustCompile(`\s+`)
)

// HumanizeID turns a snake_case step id into a title: "matriculas_menu" -> "Matriculas Menu".
func HumanizeID(id StepID) string {
	s := strings.ReplaceAll(string(id), "_", " ")
	return titleWords(s)
}

// HumanizeKey turns a camelCase message key into a title: "mensagemBoasVindas" -> "Mensagem Boas Vindas".
func HumanizeKey(key string) string {
	s := upperRe.ReplaceAllString(key, " $1")
	s = upperFirst(strings.TrimLeft(s, " "))
	s = lowerUpper.ReplaceAllString(s, "$1 $2")
	return multiSpaces.ReplaceAllString(s, " ")
}

// HumanizeDestination turns a destination key into a title: "financeiro_menu" -> "Financeiro".
func HumanizeDestination(key string) string {
	s := menuSuffix.ReplaceAllString(key, "")
	s = strings.ReplaceAll(s, "_", " ")
	return HumanizeKey(s)
}

// titleWords upper-cases every letter that starts a word.
func titleWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevWord := false
	for _, r := range s {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if isWord && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = isWord
	}
	return b.String()
}

func upperFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
