// Package dedup finds and removes documents whose word sets duplicate an
// earlier document's. Term frequencies are ignored: two documents with the
// same set of distinct words are duplicates even if the counts differ.
package dedup

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
)

// FindDuplicates returns, in ascending order, the ids of documents whose
// word set already appeared under a smaller id.
func FindDuplicates(srv *search.Server) []int {
	seen := make(map[string]struct{})
	var duplicates []int
	for _, id := range srv.DocumentIDs() {
		key := wordSetKey(srv.WordFrequencies(id))
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// RemoveDuplicates removes every duplicate found by FindDuplicates,
// keeping the smallest id of each group, and returns the removed ids.
func RemoveDuplicates(srv *search.Server) []int {
	log := slog.Default().With("component", "dedup")
	duplicates := FindDuplicates(srv)
	for _, id := range duplicates {
		log.Info("removing duplicate document", "doc_id", id)
		srv.RemoveDocument(id)
	}
	return duplicates
}

// wordSetKey builds a canonical fingerprint of a document's word set.
// Words cannot contain spaces, so joining on a space is collision-free.
func wordSetKey(freqs map[string]float64) string {
	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}
