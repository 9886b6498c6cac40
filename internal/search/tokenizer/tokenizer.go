// Package tokenizer splits document and query text into words. A word is a
// maximal run of non-space bytes; the only separator is the ASCII space
// character 0x20. No case folding, stemming, or Unicode segmentation is
// applied, so the returned words are byte-exact slices of the input.
package tokenizer

import (
	"fmt"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

// SplitWords returns every maximal non-space run in text, in order.
// Leading, trailing, and repeated spaces produce no empty words.
func SplitWords(text string) []string {
	words := make([]string, 0, len(text)/6)
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// Validate rejects words containing control bytes in [0x00, 0x20).
func Validate(word string) error {
	for i := 0; i < len(word); i++ {
		if word[i] < 0x20 {
			return fmt.Errorf("word %q: %w", word, pkgerrors.ErrInvalidWord)
		}
	}
	return nil
}
