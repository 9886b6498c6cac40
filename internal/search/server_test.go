package search_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

func mustServer(t *testing.T, stopWords ...string) *search.Server {
	t.Helper()
	srv, err := search.New(stopWords)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return srv
}

func mustAdd(t *testing.T, srv *search.Server, id int, text string, status search.DocumentStatus, ratings []int) {
	t.Helper()
	if err := srv.AddDocument(id, text, status, ratings); err != nil {
		t.Fatalf("adding document %d: %v", id, err)
	}
}

func mustFindTop(t *testing.T, srv *search.Server, query string) []search.Document {
	t.Helper()
	docs, err := srv.FindTop(query)
	if err != nil {
		t.Fatalf("find top %q: %v", query, err)
	}
	return docs
}

// ratedCorpus is the reference corpus shared by the ranking tests: mixed
// statuses, distinct ratings, overlapping vocabulary.
func ratedCorpus(t *testing.T, srv *search.Server) {
	t.Helper()
	mustAdd(t, srv, 1, "cat", search.StatusActual, []int{1, 2, 3})
	mustAdd(t, srv, 2, "dog in the city", search.StatusActual, []int{4, 5, 6})
	mustAdd(t, srv, 3, "dog with the pretty eye", search.StatusIrrelevant, []int{1, 2, 3})
	mustAdd(t, srv, 4, "bird eugene in the city", search.StatusBanned, []int{1, 2, 3})
	mustAdd(t, srv, 5, "cat in the city", search.StatusActual, []int{7, 8, 9})
}

func ids(docs []search.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStopWordsExcludedFromAddedDocuments(t *testing.T) {
	const docID = 42
	const content = "cat in the city"
	ratings := []int{1, 2, 3}

	t.Run("without stop words the document is found", func(t *testing.T) {
		srv := mustServer(t)
		mustAdd(t, srv, docID, content, search.StatusActual, ratings)
		found := mustFindTop(t, srv, "in")
		if len(found) != 1 || found[0].ID != docID {
			t.Fatalf("expected document %d, got %v", docID, found)
		}
	})

	t.Run("stop words are excluded at ingest", func(t *testing.T) {
		srv, err := search.NewFromText("in the")
		if err != nil {
			t.Fatalf("creating server: %v", err)
		}
		mustAdd(t, srv, docID, content, search.StatusActual, ratings)
		if found := mustFindTop(t, srv, "in"); len(found) != 0 {
			t.Fatalf("stop word query must find nothing, got %v", found)
		}
	})
}

func TestMinusWordExcludesDocuments(t *testing.T) {
	srv := mustServer(t)
	mustAdd(t, srv, 1, "cat in the city", search.StatusActual, []int{1, 2, 3})
	if found := mustFindTop(t, srv, "-in"); len(found) != 0 {
		t.Fatalf("document with minus-word must be excluded, got %v", found)
	}
}

func TestAddDocumentValidation(t *testing.T) {
	srv := mustServer(t)
	mustAdd(t, srv, 7, "dog", search.StatusActual, nil)

	cases := []struct {
		name string
		id   int
		text string
		want error
	}{
		{"negative id", -1, "cat", pkgerrors.ErrInvalidArgument},
		{"duplicate id", 7, "cat", pkgerrors.ErrInvalidArgument},
		{"control byte in word", 8, "ca\x01t", pkgerrors.ErrInvalidWord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := srv.AddDocument(tc.id, tc.text, search.StatusActual, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// A failed add must not leave partial state behind.
	if got := srv.DocumentCount(); got != 1 {
		t.Fatalf("document count after failed adds = %d, want 1", got)
	}
	if found := mustFindTop(t, srv, "cat"); len(found) != 0 {
		t.Fatalf("rejected documents must not be searchable, got %v", found)
	}
}

func TestInvalidStopWordRejected(t *testing.T) {
	if _, err := search.New([]string{"in", "th\x02e"}); !errors.Is(err, pkgerrors.ErrInvalidWord) {
		t.Fatalf("expected ErrInvalidWord, got %v", err)
	}
}

func TestAllStopWordDocumentIsAccepted(t *testing.T) {
	srv, err := search.NewFromText("in the")
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	mustAdd(t, srv, 3, "in the", search.StatusActual, []int{5})
	if got := srv.DocumentCount(); got != 1 {
		t.Fatalf("document count = %d, want 1", got)
	}
	if freqs := srv.WordFrequencies(3); len(freqs) != 0 {
		t.Fatalf("expected empty frequencies, got %v", freqs)
	}
	if got := srv.DocumentIDs(); !equalInts(got, []int{3}) {
		t.Fatalf("document ids = %v, want [3]", got)
	}
}

func TestAverageRating(t *testing.T) {
	srv := mustServer(t)
	mustAdd(t, srv, 1, "cat", search.StatusActual, nil)
	mustAdd(t, srv, 2, "cat", search.StatusActual, []int{1, 2, 3})
	mustAdd(t, srv, 3, "cat", search.StatusActual, []int{-1, -2})
	mustAdd(t, srv, 4, "cat", search.StatusActual, []int{10})

	want := map[int]int{
		1: 0,  // empty ratings
		2: 2,  // 6/3
		3: -1, // -3/2 truncates toward zero
		4: 10,
	}
	docs := mustFindTop(t, srv, "cat")
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs))
	}
	for _, d := range docs {
		if d.Rating != want[d.ID] {
			t.Errorf("document %d rating = %d, want %d", d.ID, d.Rating, want[d.ID])
		}
	}
}

func TestRankingAndStatusFilter(t *testing.T) {
	srv := mustServer(t)
	ratedCorpus(t, srv)
	const query = "cat in the city"

	t.Run("actual documents ranked by relevance", func(t *testing.T) {
		docs := mustFindTop(t, srv, query)
		if got, want := ids(docs), []int{1, 5, 2}; !equalInts(got, want) {
			t.Fatalf("result ids = %v, want %v", got, want)
		}
		wantRatings := []int{2, 8, 5}
		for i, d := range docs {
			if d.Rating != wantRatings[i] {
				t.Errorf("result[%d] rating = %d, want %d", i, d.Rating, wantRatings[i])
			}
		}
	})

	t.Run("irrelevant status", func(t *testing.T) {
		docs, err := srv.FindTopStatus(query, search.StatusIrrelevant)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := ids(docs), []int{3}; !equalInts(got, want) {
			t.Fatalf("result ids = %v, want %v", got, want)
		}
	})

	t.Run("banned status", func(t *testing.T) {
		docs, err := srv.FindTopStatus(query, search.StatusBanned)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := ids(docs), []int{4}; !equalInts(got, want) {
			t.Fatalf("result ids = %v, want %v", got, want)
		}
	})

	t.Run("top relevance is tf times idf", func(t *testing.T) {
		docs := mustFindTop(t, srv, query)
		// Document 1 contains only "cat", which appears in 2 of 5 documents.
		want := math.Log(5.0 / 2.0)
		if math.Abs(docs[0].Relevance-want) >= search.RelevanceEpsilon {
			t.Fatalf("top relevance = %v, want %v", docs[0].Relevance, want)
		}
	})

	t.Run("custom predicate", func(t *testing.T) {
		docs, err := srv.FindTopFunc(query, func(id int, _ search.DocumentStatus, _ int) bool {
			return id%2 == 0
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 2 {
			t.Fatalf("expected 2 documents, got %v", ids(docs))
		}
		for _, d := range docs {
			if d.ID%2 != 0 {
				t.Errorf("predicate leaked odd document %d", d.ID)
			}
		}
	})
}

func TestRelevanceTieBrokenByRatingThenID(t *testing.T) {
	srv := mustServer(t)
	// Both documents score identically for the query; ratings differ.
	mustAdd(t, srv, 10, "red fox", search.StatusActual, []int{1})
	mustAdd(t, srv, 11, "red wolf", search.StatusActual, []int{9})
	docs := mustFindTop(t, srv, "red")
	if got, want := ids(docs), []int{11, 10}; !equalInts(got, want) {
		t.Fatalf("result ids = %v, want %v (rating breaks the tie)", got, want)
	}

	// Equal relevance and equal rating fall back to ascending id.
	srv2 := mustServer(t)
	mustAdd(t, srv2, 5, "blue jay", search.StatusActual, []int{3})
	mustAdd(t, srv2, 2, "blue tit", search.StatusActual, []int{3})
	docs = mustFindTop(t, srv2, "blue")
	if got, want := ids(docs), []int{2, 5}; !equalInts(got, want) {
		t.Fatalf("result ids = %v, want %v (id breaks the tie)", got, want)
	}
}

func TestResultTruncation(t *testing.T) {
	srv := mustServer(t)
	for id := 0; id < 9; id++ {
		mustAdd(t, srv, id, "shared word", search.StatusActual, []int{id})
	}
	docs := mustFindTop(t, srv, "shared")
	if len(docs) != search.MaxResultDocuments {
		t.Fatalf("result length = %d, want %d", len(docs), search.MaxResultDocuments)
	}

	// Fewer candidates than the cap: all of them come back.
	docs, err := srv.FindTopFunc("shared", func(id int, _ search.DocumentStatus, _ int) bool {
		return id < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("result length = %d, want 3", len(docs))
	}
}

func TestOrderIndependentConstruction(t *testing.T) {
	type doc struct {
		id   int
		text string
	}
	corpus := []doc{
		{1, "cat"},
		{2, "dog in the city"},
		{3, "dog with the pretty eye"},
		{4, "bird eugene in the city"},
		{5, "cat in the city"},
	}
	const query = "cat in the city"

	reference := mustServer(t)
	for _, d := range corpus {
		mustAdd(t, reference, d.id, d.text, search.StatusActual, []int{d.id})
	}
	want := ids(mustFindTop(t, reference, query))

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		srv := mustServer(t)
		for _, i := range rng.Perm(len(corpus)) {
			d := corpus[i]
			mustAdd(t, srv, d.id, d.text, search.StatusActual, []int{d.id})
		}
		if got := ids(mustFindTop(t, srv, query)); !equalInts(got, want) {
			t.Fatalf("trial %d: result ids = %v, want %v", trial, got, want)
		}
	}
}

func TestRemoveDocument(t *testing.T) {
	srv := mustServer(t)
	ratedCorpus(t, srv)

	srv.RemoveDocument(5)
	if got := srv.DocumentCount(); got != 4 {
		t.Fatalf("document count = %d, want 4", got)
	}
	if got, want := srv.DocumentIDs(), []int{1, 2, 3, 4}; !equalInts(got, want) {
		t.Fatalf("document ids = %v, want %v", got, want)
	}
	for _, d := range mustFindTop(t, srv, "cat in the city") {
		if d.ID == 5 {
			t.Fatalf("removed document still returned: %v", d)
		}
	}
	if freqs := srv.WordFrequencies(5); len(freqs) != 0 {
		t.Fatalf("removed document still has frequencies: %v", freqs)
	}

	// Removing again, or removing an id that never existed, is a no-op.
	srv.RemoveDocument(5)
	srv.RemoveDocument(999)
	if got := srv.DocumentCount(); got != 4 {
		t.Fatalf("document count after no-op removes = %d, want 4", got)
	}
}

func TestRemoveDocumentParallelMatchesSequential(t *testing.T) {
	build := func(t *testing.T) *search.Server {
		srv := mustServer(t)
		ratedCorpus(t, srv)
		return srv
	}

	seq := build(t)
	seq.RemoveDocumentPolicy(search.Sequential, 4)
	par := build(t)
	par.RemoveDocumentPolicy(search.Parallel, 4)

	if got, want := par.DocumentIDs(), seq.DocumentIDs(); !equalInts(got, want) {
		t.Fatalf("parallel remove ids = %v, sequential = %v", got, want)
	}
	const query = "bird in the city"
	gotDocs, err := par.FindTop(query)
	if err != nil {
		t.Fatal(err)
	}
	wantDocs := mustFindTop(t, seq, query)
	if !equalInts(ids(gotDocs), ids(wantDocs)) {
		t.Fatalf("parallel remove results = %v, sequential = %v", ids(gotDocs), ids(wantDocs))
	}
}

func TestWordFrequencies(t *testing.T) {
	srv, err := search.NewFromText("and")
	if err != nil {
		t.Fatal(err)
	}
	// "cat" repeats: each occurrence contributes 1/3.
	mustAdd(t, srv, 1, "cat cat dog", search.StatusActual, nil)

	freqs := srv.WordFrequencies(1)
	if len(freqs) != 2 {
		t.Fatalf("expected 2 distinct words, got %v", freqs)
	}
	if got := freqs["cat"]; math.Abs(got-2.0/3.0) >= search.RelevanceEpsilon {
		t.Errorf("tf(cat) = %v, want 2/3", got)
	}
	if got := freqs["dog"]; math.Abs(got-1.0/3.0) >= search.RelevanceEpsilon {
		t.Errorf("tf(dog) = %v, want 1/3", got)
	}

	sum := 0.0
	for _, tf := range freqs {
		sum += tf
	}
	if math.Abs(sum-1.0) >= search.RelevanceEpsilon {
		t.Errorf("term frequencies sum to %v, want 1", sum)
	}

	// Unknown ids get a readable empty map, not nil semantics surprises.
	if got := srv.WordFrequencies(77); got == nil || len(got) != 0 {
		t.Fatalf("unknown id frequencies = %v, want empty map", got)
	}
}

func TestDocumentIDsAscending(t *testing.T) {
	srv := mustServer(t)
	for _, id := range []int{9, 2, 14, 0, 5} {
		mustAdd(t, srv, id, "word", search.StatusActual, nil)
	}
	if got, want := srv.DocumentIDs(), []int{0, 2, 5, 9, 14}; !equalInts(got, want) {
		t.Fatalf("document ids = %v, want %v", got, want)
	}
	srv.RemoveDocument(5)
	if got, want := srv.DocumentIDs(), []int{0, 2, 9, 14}; !equalInts(got, want) {
		t.Fatalf("document ids after remove = %v, want %v", got, want)
	}
}

func TestEmptyQueryFindsNothing(t *testing.T) {
	srv := mustServer(t)
	mustAdd(t, srv, 1, "cat", search.StatusActual, nil)
	if docs := mustFindTop(t, srv, ""); len(docs) != 0 {
		t.Fatalf("empty query returned %v", docs)
	}
	if docs := mustFindTop(t, srv, "unknownword"); len(docs) != 0 {
		t.Fatalf("unknown word returned %v", docs)
	}
}
