package search

import (
	"fmt"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

// Match returns the sorted, deduplicated plus-words of the query present
// in the document, together with the document's status. If any minus-word
// is present the word list is empty. Unknown ids fail with ErrOutOfRange.
func (s *Server) Match(rawQuery string, id int) ([]string, DocumentStatus, error) {
	return s.MatchPolicy(Sequential, rawQuery, id)
}

// MatchPolicy is Match with an explicit execution policy. The parallel
// path skips query normalization during parsing; the result is sorted and
// deduplicated here either way, so both paths return the same words.
func (s *Server) MatchPolicy(policy ExecutionPolicy, rawQuery string, id int) ([]string, DocumentStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[id]
	if !ok {
		return nil, 0, fmt.Errorf("match document %d: %w", id, pkgerrors.ErrOutOfRange)
	}
	q, err := s.parseQuery(policy, rawQuery)
	if err != nil {
		return nil, 0, err
	}

	freqs := s.docWordFreqs[id]
	for _, word := range q.minus {
		if _, present := freqs[word]; present {
			return []string{}, data.status, nil
		}
	}
	matched := make([]string, 0, len(q.plus))
	for _, word := range q.plus {
		if _, present := freqs[word]; present {
			matched = append(matched, word)
		}
	}
	return sortUnique(matched), data.status, nil
}
