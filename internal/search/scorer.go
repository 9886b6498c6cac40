package search

import (
	"math"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search/concurrent"
)

// FindTop runs the query sequentially and keeps only StatusActual documents.
func (s *Server) FindTop(rawQuery string) ([]Document, error) {
	return s.FindTopPolicy(Sequential, rawQuery)
}

// FindTopStatus keeps only documents with the given status.
func (s *Server) FindTopStatus(rawQuery string, status DocumentStatus) ([]Document, error) {
	return s.FindTopPolicyStatus(Sequential, rawQuery, status)
}

// FindTopFunc keeps only documents accepted by the predicate.
func (s *Server) FindTopFunc(rawQuery string, pred Predicate) ([]Document, error) {
	return s.FindTopPolicyFunc(Sequential, rawQuery, pred)
}

// FindTopPolicy is FindTop with an explicit execution policy.
func (s *Server) FindTopPolicy(policy ExecutionPolicy, rawQuery string) ([]Document, error) {
	return s.FindTopPolicyStatus(policy, rawQuery, StatusActual)
}

// FindTopPolicyStatus is FindTopStatus with an explicit execution policy.
func (s *Server) FindTopPolicyStatus(policy ExecutionPolicy, rawQuery string, status DocumentStatus) ([]Document, error) {
	return s.FindTopPolicyFunc(policy, rawQuery, func(_ int, docStatus DocumentStatus, _ int) bool {
		return docStatus == status
	})
}

// FindTopPolicyFunc scores every document containing at least one plus-word
// that the predicate accepts, drops documents containing any minus-word,
// ranks by relevance (rating, then ascending id, break ties within
// RelevanceEpsilon), and truncates to MaxResultDocuments. Unknown query
// words simply match nothing.
func (s *Server) FindTopPolicyFunc(policy ExecutionPolicy, rawQuery string, pred Predicate) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, err := s.parseQuery(policy, rawQuery)
	if err != nil {
		return nil, err
	}

	var matched []Document
	if policy == Parallel {
		matched = s.findAllParallel(q, pred)
	} else {
		matched = s.findAllSequential(q, pred)
	}

	sort.Slice(matched, func(i, j int) bool {
		if math.Abs(matched[i].Relevance-matched[j].Relevance) < RelevanceEpsilon {
			if matched[i].Rating != matched[j].Rating {
				return matched[i].Rating > matched[j].Rating
			}
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Relevance > matched[j].Relevance
	})
	if len(matched) > MaxResultDocuments {
		matched = matched[:MaxResultDocuments]
	}
	return matched, nil
}

// findAllSequential accumulates tf·idf per candidate in a call-local map.
// Callers hold at least the read lock.
func (s *Server) findAllSequential(q query, pred Predicate) []Document {
	relevance := make(map[int]float64)
	for _, word := range q.plus {
		docFreqs, ok := s.wordDocFreqs[word]
		if !ok {
			continue
		}
		idf := s.inverseDocumentFreq(word)
		for id, tf := range docFreqs {
			data := s.docs[id]
			if pred(id, data.status, data.rating) {
				relevance[id] += tf * idf
			}
		}
	}
	s.eraseMinusMatches(q, relevance)
	return s.materialize(relevance)
}

// findAllParallel fans the plus-words out over one worker each, all
// writing into the bucketed accumulator. Plus-words are deduplicated
// through a set first so a duplicate term (the parallel parser does not
// normalize) cannot contribute twice.
func (s *Server) findAllParallel(q query, pred Predicate) []Document {
	plus := make(map[string]struct{}, len(q.plus))
	for _, w := range q.plus {
		plus[w] = struct{}{}
	}

	acc := concurrent.NewMap(BucketCount)
	var wg sync.WaitGroup
	for word := range plus {
		docFreqs, ok := s.wordDocFreqs[word]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(word string, docFreqs map[int]float64) {
			defer wg.Done()
			idf := s.inverseDocumentFreq(word)
			for id, tf := range docFreqs {
				data := s.docs[id]
				if pred(id, data.status, data.rating) {
					acc.Add(id, tf*idf)
				}
			}
		}(word, docFreqs)
	}
	wg.Wait()

	relevance := acc.Drain()
	s.eraseMinusMatches(q, relevance)
	return s.materialize(relevance)
}

// eraseMinusMatches drops every document containing a minus-word,
// regardless of the predicate.
func (s *Server) eraseMinusMatches(q query, relevance map[int]float64) {
	for _, word := range q.minus {
		for id := range s.wordDocFreqs[word] {
			delete(relevance, id)
		}
	}
}

func (s *Server) materialize(relevance map[int]float64) []Document {
	matched := make([]Document, 0, len(relevance))
	for id, rel := range relevance {
		matched = append(matched, Document{
			ID:        id,
			Relevance: rel,
			Rating:    s.docs[id].rating,
		})
	}
	return matched
}

// inverseDocumentFreq is ln(liveDocs / docsContainingWord). Only called
// for words present in wordDocFreqs, so the denominator is never zero.
func (s *Server) inverseDocumentFreq(word string) float64 {
	return math.Log(float64(len(s.docs)) / float64(len(s.wordDocFreqs[word])))
}
