// Package search implements an in-memory TF-IDF search engine over short
// documents identified by non-negative integers. Documents carry a status
// tag and a rating; queries support negative terms, stop-word filtering,
// and predicate-based filtering over document metadata, and can run on a
// sequential or parallel execution path.
package search

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search/tokenizer"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

type documentData struct {
	rating int
	status DocumentStatus
}

// emptyFrequencies is handed out by WordFrequencies for unknown ids so
// callers always get a readable map.
var emptyFrequencies = map[string]float64{}

// Server is the search engine. Reads (FindTop, Match, WordFrequencies,
// DocumentIDs, DocumentCount) may run concurrently with each other; writes
// (AddDocument, RemoveDocument) take the write lock and serialize against
// everything else.
type Server struct {
	mu        sync.RWMutex
	words     *interner
	stopWords map[string]struct{}

	// wordDocFreqs and docWordFreqs mirror each other: a (word, doc, tf)
	// triple is present in one iff it is present in the other.
	wordDocFreqs map[string]map[int]float64
	docWordFreqs map[int]map[string]float64

	docs   map[int]documentData
	ids    []int // ascending
	logger *slog.Logger
}

// New creates a Server with the given stop words. Empty strings are
// ignored; a stop word containing a byte below 0x20 fails with
// ErrInvalidWord.
func New(stopWords []string) (*Server, error) {
	s := &Server{
		words:        newInterner(),
		stopWords:    make(map[string]struct{}, len(stopWords)),
		wordDocFreqs: make(map[string]map[int]float64),
		docWordFreqs: make(map[int]map[string]float64),
		docs:         make(map[int]documentData),
		logger:       slog.Default().With("component", "search-server"),
	}
	for _, w := range stopWords {
		if w == "" {
			continue
		}
		if err := tokenizer.Validate(w); err != nil {
			return nil, fmt.Errorf("stop word: %w", err)
		}
		s.stopWords[w] = struct{}{}
	}
	return s, nil
}

// NewFromText creates a Server from a space-separated stop-word string.
func NewFromText(stopWordsText string) (*Server, error) {
	return New(tokenizer.SplitWords(stopWordsText))
}

// AddDocument indexes a document. The id must be non-negative and unused;
// tokens with control bytes fail with ErrInvalidWord. The add is atomic:
// on any error the index is untouched. Each of the n tokens surviving
// stop-word filtering contributes 1/n to the document's term frequencies,
// so repeated tokens accumulate.
func (s *Server) AddDocument(id int, text string, status DocumentStatus, ratings []int) error {
	if id < 0 {
		return fmt.Errorf("document id %d must be non-negative: %w", id, pkgerrors.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; exists {
		return fmt.Errorf("document id %d already exists: %w", id, pkgerrors.ErrInvalidArgument)
	}
	words, err := s.splitIntoWordsNoStop(text)
	if err != nil {
		return fmt.Errorf("document %d: %w", id, err)
	}

	// Validation is complete; nothing below can fail.
	freqs := make(map[string]float64, len(words))
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, w := range words {
			freqs[s.words.Intern(w)] += inv
		}
	}
	for w, tf := range freqs {
		docFreqs := s.wordDocFreqs[w]
		if docFreqs == nil {
			docFreqs = make(map[int]float64)
			s.wordDocFreqs[w] = docFreqs
		}
		docFreqs[id] = tf
	}
	s.docWordFreqs[id] = freqs
	s.docs[id] = documentData{rating: averageRating(ratings), status: status}

	pos := sort.SearchInts(s.ids, id)
	s.ids = append(s.ids, 0)
	copy(s.ids[pos+1:], s.ids[pos:])
	s.ids[pos] = id

	s.logger.Debug("document added",
		"doc_id", id,
		"status", status.String(),
		"word_count", len(freqs),
	)
	return nil
}

// RemoveDocument unwires a document from the index. Removing an unknown id
// is a no-op.
func (s *Server) RemoveDocument(id int) {
	s.RemoveDocumentPolicy(Sequential, id)
}

// RemoveDocumentPolicy is RemoveDocument with an explicit execution policy.
// The parallel path deletes the document's postings from each word's
// inner map concurrently; the inner maps are disjoint per word, so the
// workers share no writable state.
func (s *Server) RemoveDocumentPolicy(policy ExecutionPolicy, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	freqs, ok := s.docWordFreqs[id]
	if !ok {
		return
	}
	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}

	if policy == Parallel {
		var wg sync.WaitGroup
		for _, w := range words {
			wg.Add(1)
			go func(w string) {
				defer wg.Done()
				delete(s.wordDocFreqs[w], id)
			}(w)
		}
		wg.Wait()
	} else {
		for _, w := range words {
			delete(s.wordDocFreqs[w], id)
		}
	}
	for _, w := range words {
		if len(s.wordDocFreqs[w]) == 0 {
			delete(s.wordDocFreqs, w)
		}
	}

	delete(s.docWordFreqs, id)
	delete(s.docs, id)
	pos := sort.SearchInts(s.ids, id)
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)

	s.logger.Debug("document removed", "doc_id", id, "policy", policy.String())
}

// DocumentCount returns the number of live documents.
func (s *Server) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// DocumentIDs returns the live document ids in ascending order.
func (s *Server) DocumentIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// WordFrequencies returns the word → normalized-term-frequency map for a
// document, or a shared empty map for unknown ids. The returned map is a
// read-only view into the index: callers must not modify it, and it is
// only valid until the next AddDocument or RemoveDocument call.
func (s *Server) WordFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if freqs, ok := s.docWordFreqs[id]; ok {
		return freqs
	}
	return emptyFrequencies
}

// WordCount returns the number of distinct words ever interned.
func (s *Server) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.words.Len()
}

func (s *Server) splitIntoWordsNoStop(text string) ([]string, error) {
	raw := tokenizer.SplitWords(text)
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if err := tokenizer.Validate(w); err != nil {
			return nil, err
		}
		if _, stop := s.stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// averageRating truncates toward zero, matching integer division.
func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
