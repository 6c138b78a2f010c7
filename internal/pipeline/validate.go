package pipeline

import (
	"strings"
	"unicode/utf8"
)

const (
	minRawLength     = 10
	minTokenCount    = 3
	spamRepeatLength = 6
)

// ValidationResult is the validator stage output.
type ValidationResult struct {
	CleanedText string `json:"cleaned_text"`
	Location    string `json:"location"`
	IsValid     bool   `json:"is_valid"`
	Reason      string `json:"reason,omitempty"`
}

// Validate normalizes a raw complaint and applies the acceptance checks in
// order; the first failure wins. It is pure and deterministic.
func Validate(rawText, location string) ValidationResult {
	raw := strings.TrimSpace(rawText)
	result := ValidationResult{
		CleanedText: Normalize(raw),
		Location:    strings.TrimSpace(location),
	}

	if utf8.RuneCountInString(raw) < minRawLength {
		result.Reason = "text too short (minimum 10 characters)"
		return result
	}

	if len(Tokenize(result.CleanedText)) < minTokenCount {
		result.Reason = "insufficient content after normalization"
		return result
	}

	if leadingRepeatLength(raw) >= spamRepeatLength {
		result.Reason = "spam detected (repeated characters)"
		return result
	}

	result.IsValid = true
	return result
}

// Normalize trims, lowercases, collapses whitespace, then drops stop-words
// and tokens of length <= 2, rejoining the survivors with single spaces.
func Normalize(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var kept []string
	for _, tok := range strings.Fields(lowered) {
		if utf8.RuneCountInString(tok) <= 2 || stopWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Tokenize splits cleaned text into its tokens.
func Tokenize(cleaned string) []string {
	return strings.Fields(cleaned)
}

// leadingRepeatLength counts how many times the first rune repeats at the
// start of s.
func leadingRepeatLength(s string) int {
	if s == "" {
		return 0
	}
	runes := []rune(s)
	n := 1
	for n < len(runes) && runes[n] == runes[0] {
		n++
	}
	return n
}
