package search

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"
)

// checkInvariants asserts the structural invariants that must hold at
// every public-call boundary: identical key sets across ids/docs/d2w, the
// w2d/d2w mirror property, normalized term-frequency sums, and interned
// word keys.
func checkInvariants(t *testing.T, s *Server) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.ids) != len(s.docs) || len(s.ids) != len(s.docWordFreqs) {
		t.Fatalf("key set sizes diverge: ids=%d docs=%d docWordFreqs=%d",
			len(s.ids), len(s.docs), len(s.docWordFreqs))
	}
	for i, id := range s.ids {
		if i > 0 && s.ids[i-1] >= id {
			t.Fatalf("ids not strictly increasing at %d: %v", i, s.ids)
		}
		if _, ok := s.docs[id]; !ok {
			t.Fatalf("id %d missing from docs", id)
		}
		if _, ok := s.docWordFreqs[id]; !ok {
			t.Fatalf("id %d missing from docWordFreqs", id)
		}
	}

	forward := 0
	for word, docFreqs := range s.wordDocFreqs {
		if len(docFreqs) == 0 {
			t.Fatalf("word %q left with an empty posting map", word)
		}
		if _, ok := s.words.Lookup(word); !ok {
			t.Fatalf("word %q in wordDocFreqs is not interned", word)
		}
		for id, tf := range docFreqs {
			forward++
			if got := s.docWordFreqs[id][word]; got != tf {
				t.Fatalf("mirror mismatch for (%q, %d): %v vs %v", word, id, tf, got)
			}
		}
	}
	inverse := 0
	for id, freqs := range s.docWordFreqs {
		sum := 0.0
		for word, tf := range freqs {
			inverse++
			sum += tf
			if _, ok := s.words.Lookup(word); !ok {
				t.Fatalf("word %q in docWordFreqs is not interned", word)
			}
		}
		if len(freqs) > 0 && math.Abs(sum-1.0) >= RelevanceEpsilon {
			t.Fatalf("term frequencies of document %d sum to %v", id, sum)
		}
	}
	if forward != inverse {
		t.Fatalf("frequency maps disagree on pair count: %d vs %d", forward, inverse)
	}
}

func TestInvariantsUnderRandomMutation(t *testing.T) {
	vocabulary := []string{"cat", "dog", "bird", "city", "box", "eugene", "pretty", "tail", "the", "in"}
	rng := rand.New(rand.NewSource(7))

	srv, err := NewFromText("the in")
	if err != nil {
		t.Fatal(err)
	}
	live := make(map[int]bool)
	nextID := 0

	for step := 0; step < 300; step++ {
		switch {
		case rng.Intn(3) != 0 || len(live) == 0:
			words := make([]string, 1+rng.Intn(8))
			for i := range words {
				words[i] = vocabulary[rng.Intn(len(vocabulary))]
			}
			text := ""
			for i, w := range words {
				if i > 0 {
					text += " "
				}
				text += w
			}
			ratings := []int{rng.Intn(10), rng.Intn(10)}
			if err := srv.AddDocument(nextID, text, DocumentStatus(rng.Intn(4)), ratings); err != nil {
				t.Fatalf("step %d: add %d: %v", step, nextID, err)
			}
			live[nextID] = true
			nextID++
		default:
			candidates := make([]int, 0, len(live))
			for id := range live {
				candidates = append(candidates, id)
			}
			sort.Ints(candidates)
			victim := candidates[rng.Intn(len(candidates))]
			policy := Sequential
			if rng.Intn(2) == 0 {
				policy = Parallel
			}
			srv.RemoveDocumentPolicy(policy, victim)
			delete(live, victim)
		}
		checkInvariants(t, srv)
	}

	if got := srv.DocumentCount(); got != len(live) {
		t.Fatalf("document count = %d, want %d", got, len(live))
	}
}

func TestInternedWordsSurviveRemoval(t *testing.T) {
	srv, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.AddDocument(1, "ephemeral words", StatusActual, nil); err != nil {
		t.Fatal(err)
	}
	before := srv.WordCount()
	srv.RemoveDocument(1)
	if got := srv.WordCount(); got != before {
		t.Fatalf("interned word count changed across removal: %d -> %d", before, got)
	}
	if _, ok := srv.words.Lookup("ephemeral"); !ok {
		t.Fatal("word released after its last document was removed")
	}
}

func TestSortUnique(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{"b"}, []string{"b"}},
		{[]string{"b", "a", "b", "a", "c"}, []string{"a", "b", "c"}},
		{[]string{"x", "x", "x"}, []string{"x"}},
	}
	for _, tc := range cases {
		got := sortUnique(append([]string(nil), tc.in...))
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Errorf("sortUnique(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
