// Copyright (c) 2026 Noveris. All rights reserved.

package wordcount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noveris/noveris/pkg/wordcount"
)

/*
TestCount verifies word counting across writing systems.
*/
func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace_only", "  \n\t ", 0},
		{"single_word", "hello", 1},
		{"latin_sentence", "The quick brown fox jumps.", 5},
		{"punctuation_split", "one,two;three", 3},
		{"digits_count", "chapter 42 begins", 3},
		{"cjk_per_rune", "你好世界", 4},
		{"japanese_kana", "こんにちは", 5},
		{"korean_hangul", "안녕", 2},
		{"mixed_scripts", "read 小说 daily", 4},
		{"cjk_adjacent_latin", "abc你好", 3},
		{"accented_latin", "café au lait", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wordcount.Count(tt.text))
		})
	}
}
