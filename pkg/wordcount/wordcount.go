// Copyright (c) 2026 Noveris. All rights reserved.

// Package wordcount counts words in chapter bodies across writing systems.
//
// # Counting Rules
//
// Space-delimited scripts (Latin, Cyrillic, ...) count whitespace-separated
// runs of letters and digits as one word each. CJK scripts have no word
// delimiter, so each Han, Hiragana, Katakana, or Hangul rune counts as one
// word on its own. Mixed-script text sums both rules.
package wordcount

import "unicode"

// cjkRanges covers the scripts where one rune approximates one word.
var cjkRanges = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
}

// Count returns the number of words in s.
func Count(s string) int {
	count := 0
	inWord := false

	for _, r := range s {
		if isCJK(r) {
			// A CJK rune terminates any pending space-delimited word
			// and counts as a word itself.
			if inWord {
				count++
				inWord = false
			}
			count++
			continue
		}

		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			inWord = true
			continue
		}

		if inWord {
			count++
			inWord = false
		}
	}

	if inWord {
		count++
	}

	return count
}

// isCJK reports whether r belongs to a script counted per-rune.
func isCJK(r rune) bool {
	for _, rt := range cjkRanges {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}
