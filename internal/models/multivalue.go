package models

import "strings"

// Separator joins the tokens of a multi-value column.
const Separator = "|"

// MultiValue is a pipe-joined multi-value column value such as "rock|electronic".
type MultiValue string

// NewMultiValue joins tokens with [Separator]. Order is kept.
func NewMultiValue(tokens ...string) MultiValue {
	return MultiValue(strings.Join(tokens, Separator))
}

// Split returns the tokens. An empty value yields a single empty token.
func (m MultiValue) Split() []string {
	return strings.Split(string(m), Separator)
}

// Join returns the stored representation.
func (m MultiValue) Join() string {
	return string(m)
}

// Contains reports whether token is one of the value's tokens, ignoring case.
func (m MultiValue) Contains(token string) bool {
	for _, t := range m.Split() {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// Matches applies the browse rule, ignoring case: the whole value equals selection, starts with
// "selection|", contains "|selection|", or ends with "|selection".
func (m MultiValue) Matches(selection string) bool {
	if selection == "" {
		return false
	}
	value := Separator + strings.ToLower(string(m)) + Separator
	return strings.Contains(value, Separator+strings.ToLower(selection)+Separator)
}

// Dedupe returns tokens with later duplicates removed. The first occurrence wins.
func Dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
