package tokenizer_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search/tokenizer"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

func TestSplitWords(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"cat", []string{"cat"}},
		{"cat in the city", []string{"cat", "in", "the", "city"}},
		{"  cat   in  ", []string{"cat", "in"}},
		{"one-token", []string{"one-token"}},
		// Only ASCII space separates; tabs stay inside words (and are
		// rejected later by Validate).
		{"a\tb c", []string{"a\tb", "c"}},
	}
	for _, tc := range cases {
		got := tokenizer.SplitWords(tc.in)
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Errorf("SplitWords(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, word := range []string{"cat", "-cat", "c4t!", "\x20ok"} {
		if err := tokenizer.Validate(word); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", word, err)
		}
	}
	for _, word := range []string{"\x00", "ca\x01t", "tab\there", "new\nline", "\x1f"} {
		if err := tokenizer.Validate(word); !errors.Is(err, pkgerrors.ErrInvalidWord) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidWord", word, err)
		}
	}
}
