package search

import (
	"fmt"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search/tokenizer"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

// query is the parsed form of a raw search request.
type query struct {
	plus  []string
	minus []string
}

type queryWord struct {
	word    string
	isMinus bool
	isStop  bool
}

func (s *Server) parseQueryWord(token string) (queryWord, error) {
	if token == "" {
		return queryWord{}, fmt.Errorf("empty query word: %w", pkgerrors.ErrInvalidQuery)
	}
	word := token
	isMinus := false
	if word[0] == '-' {
		isMinus = true
		word = word[1:]
	}
	if word == "" || word[0] == '-' {
		return queryWord{}, fmt.Errorf("query word %q: %w", token, pkgerrors.ErrInvalidQuery)
	}
	if err := tokenizer.Validate(word); err != nil {
		return queryWord{}, fmt.Errorf("query word %q: %w", token, pkgerrors.ErrInvalidQuery)
	}
	// A minus token whose stripped form is a stop word is dropped, the
	// same as a plus token: stop words cannot act as exclusions.
	_, isStop := s.stopWords[word]
	return queryWord{word: word, isMinus: isMinus, isStop: isStop}, nil
}

// parseQuery tokenizes and classifies a raw query. The sequential path
// sorts and deduplicates both word lists; the parallel path skips that
// normalization and relies on the scorer and matcher tolerating
// duplicates, so both paths produce identical public results.
func (s *Server) parseQuery(policy ExecutionPolicy, text string) (query, error) {
	var q query
	for _, token := range tokenizer.SplitWords(text) {
		qw, err := s.parseQueryWord(token)
		if err != nil {
			return query{}, err
		}
		if qw.isStop {
			continue
		}
		if qw.isMinus {
			q.minus = append(q.minus, qw.word)
		} else {
			q.plus = append(q.plus, qw.word)
		}
	}
	if policy == Sequential {
		q.plus = sortUnique(q.plus)
		q.minus = sortUnique(q.minus)
	}
	return q, nil
}

// sortUnique sorts words in place and drops adjacent duplicates.
func sortUnique(words []string) []string {
	if len(words) < 2 {
		return words
	}
	sort.Strings(words)
	n := 1
	for i := 1; i < len(words); i++ {
		if words[i] != words[n-1] {
			words[n] = words[i]
			n++
		}
	}
	return words[:n]
}
